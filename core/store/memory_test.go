package store_test

import (
	"testing"

	"github.com/kilianp07/procsched/core/store"
	"github.com/kilianp07/procsched/core/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return store.NewMemoryStore() })
}
