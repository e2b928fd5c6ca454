package memory_test

import (
	"testing"

	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryRecency_Contract(t *testing.T) {
	ports.RunRecencyBackendContract(t, memory.NewRecency())
}
