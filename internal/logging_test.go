package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevels(t *testing.T) {
	l := NewLogger()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Error("info should be filtered at the default level:", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warning missing:", buf.String())
	}

	old := l.SetLogLevel(LevelInfo)
	if old != LogLevelDefault {
		t.Error("wrong old level", old)
	}
	buf.Reset()
	l.WithFields(logrus.Fields{"dimension": "num_nodes"}).Info("created")
	if !strings.Contains(buf.String(), "num_nodes") {
		t.Error("fields missing:", buf.String())
	}
}

func TestBadLevel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid level")
		}
	}()
	NewLogger().SetLogLevel(LevelMax + 1)
}
