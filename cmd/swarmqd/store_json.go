package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/swarmq/core/dimension"
	"github.com/swarmq/core/dispatch"
)

// requestRecord is the on-disk shape of a TaskRequest. swarmqd is a demo
// binary, not the durable TaskRequest store the spec assumes exists
// elsewhere, so a flat JSON file next to the pebble data directory is
// enough to let requests survive between invocations.
type requestRecord struct {
	ID           string              `json:"id"`
	Priority     int                 `json:"priority"`
	CreatedTS    time.Time           `json:"created_ts"`
	ExpirationTS time.Time           `json:"expiration_ts"`
	Dimensions   map[string][]string `json:"dimensions"`
}

func requestsPath(dataDir string) string {
	return filepath.Join(dataDir, "requests.json")
}

func loadRequestTable(dataDir string) (*requestTable, error) {
	t := newRequestTable()
	buf, err := os.ReadFile(requestsPath(dataDir))
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}

	var records []requestRecord
	if err := json.Unmarshal(buf, &records); err != nil {
		return nil, err
	}
	for _, r := range records {
		dims := make(dimension.Set, len(r.Dimensions))
		for k, v := range r.Dimensions {
			dims[k] = dimension.Value(v)
		}
		t.put(&dispatch.TaskRequest{
			ID:           r.ID,
			Priority:     r.Priority,
			CreatedTS:    r.CreatedTS,
			ExpirationTS: r.ExpirationTS,
			Dimensions:   dims,
		})
	}
	return t, nil
}

func saveRequestTable(dataDir string, t *requestTable) error {
	reqs := t.all()
	records := make([]requestRecord, 0, len(reqs))
	for _, req := range reqs {
		dims := make(map[string][]string, len(req.Dimensions))
		for k, v := range req.Dimensions {
			dims[k] = []string(v)
		}
		records = append(records, requestRecord{
			ID:           req.ID,
			Priority:     req.Priority,
			CreatedTS:    req.CreatedTS,
			ExpirationTS: req.ExpirationTS,
			Dimensions:   dims,
		})
	}

	buf, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(requestsPath(dataDir), buf, 0o644)
}
