package dispatch

import (
	"fmt"
	"testing"

	"github.com/swarmq/core/store"
)

func TestKindClassifiesDispatchErrors(t *testing.T) {
	if Kind(ErrInvalidEntry) != KindInvalidEntry {
		t.Fatalf("expected KindInvalidEntry")
	}
	if Kind(fmt.Errorf("wrapped: %w", ErrInvalidPriority)) != KindInvalidPriority {
		t.Fatalf("expected Kind to see through wrapping")
	}
}

func TestKindClassifiesStoreErrors(t *testing.T) {
	if Kind(store.ErrContention) != KindContention {
		t.Fatalf("expected KindContention")
	}
	if Kind(store.ErrNotFound) != KindNotFound {
		t.Fatalf("expected KindNotFound")
	}
}

func TestKindUnknownForUnrecognizedError(t *testing.T) {
	if Kind(fmt.Errorf("something else")) != KindUnknown {
		t.Fatalf("expected KindUnknown")
	}
}
