package chartclip

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	tests := []struct {
		name    string
		logger  *zap.Logger
		wantLog bool
	}{
		{"nil restores no-op", nil, false},
		{"observer", zap.New(core), true},
		{"nil after observer", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogger(tt.logger)
			if Logger() == nil {
				t.Fatal("Logger() = nil")
			}

			before := logs.Len()
			if _, err := New().Decode("nope"); err == nil {
				t.Fatal("expected error")
			}
			if logged := logs.Len() > before; logged != tt.wantLog {
				t.Errorf("logged = %v, want %v", logged, tt.wantLog)
			}
		})
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	core, _ := observer.New(zapcore.DebugLevel)
	l := zap.New(core)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				SetLogger(l)
				SetLogger(nil)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := Encode(scenario()); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
