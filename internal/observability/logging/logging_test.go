package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewHandler_StampsServiceAndRequestID(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want []string
	}{
		{
			name: "dev text handler",
			env:  EnvDev,
			want: []string{"service=optimizer", "module=batch", "request_id=req-1", "msg=hello"},
		},
		{
			name: "prod json handler",
			env:  EnvProd,
			want: []string{`"service":"optimizer"`, `"module":"batch"`, `"request_id":"req-1"`, `"message":"hello"`, `"severity":"INFO"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(&buf, HandlerConfig{
				Service:     ServiceInfo{Name: "optimizer", Version: "test"},
				Environment: tt.env,
				Module:      Module("batch"),
				Level:       slog.LevelInfo,
			}))

			ctx := WithRequestID(context.Background(), "req-1")
			logger.InfoContext(ctx, "hello")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q: missing %q", out, w)
				}
			}
		})
	}
}
