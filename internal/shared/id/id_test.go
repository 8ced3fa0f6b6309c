package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
	if id2.Compare(id1) <= 0 {
		t.Error("IDs from one generator should sort in creation order")
	}
}

func TestTypedIDGeneration(t *testing.T) {
	sessID := NewSessionID()
	reqID := NewRequestID()

	if !strings.HasPrefix(string(sessID), "sess_") {
		t.Errorf("SessionID should start with 'sess_', got: %s", sessID)
	}
	if !strings.HasPrefix(string(reqID), "req_") {
		t.Errorf("RequestID should start with 'req_', got: %s", reqID)
	}
}

func TestParseSessionID(t *testing.T) {
	valid := NewSessionID()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"generated", valid.String(), false},
		{"missing prefix", strings.TrimPrefix(valid.String(), "sess_"), true},
		{"wrong prefix", "req_" + strings.TrimPrefix(valid.String(), "sess_"), true},
		{"bad ulid", "sess_not-a-ulid", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSessionID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != valid {
				t.Errorf("got %s, want %s", got, valid)
			}
		})
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var (
		mu   sync.Mutex
		seen = make(map[SessionID]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := NewSessionID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}
