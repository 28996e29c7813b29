package lux

import (
	"testing"

	"github.com/itohio/golux/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		source  string
		want    Device
		wantErr bool
	}{
		{"", (*Serial)(nil), false},
		{"serial", (*Serial)(nil), false},
		{"udp", (*UDP)(nil), false},
		{"mock", (*Mock)(nil), false},
		{"bluetooth", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			cfg := config.Default()
			cfg.Sensor.Source = tt.source

			dev, err := Open(cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, dev)
			assert.False(t, dev.IsConnected())
		})
	}
}
