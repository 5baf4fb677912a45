package fcconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadecandy-protocol/fadecandy-go/pkg/mapping"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "127.0.0.1", cfg.Listen.Host)
	assert.Equal(t, 7890, cfg.Listen.Port)
	assert.Equal(t, 2.5, cfg.Color.Gamma)
	assert.Equal(t, [3]float64{1, 1, 1}, cfg.Color.Whitepoint)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Devices)
}

func TestListenJSON(t *testing.T) {
	t.Run("Marshal", func(t *testing.T) {
		data, err := json.Marshal(Listen{Host: "0.0.0.0", Port: 7890})
		require.NoError(t, err)
		assert.Equal(t, `["0.0.0.0",7890]`, string(data))
	})

	t.Run("Unmarshal", func(t *testing.T) {
		var l Listen
		require.NoError(t, json.Unmarshal([]byte(`["192.168.1.4", 7000]`), &l))
		assert.Equal(t, Listen{Host: "192.168.1.4", Port: 7000}, l)
	})

	t.Run("UnmarshalRejectsWrongShape", func(t *testing.T) {
		var l Listen
		assert.Error(t, json.Unmarshal([]byte(`["host"]`), &l))
		assert.Error(t, json.Unmarshal([]byte(`{"host": "x"}`), &l))
	})
}

func TestFromCompiler(t *testing.T) {
	c := mapping.NewCompiler()
	for i := 0; i < 3; i++ {
		c.RegisterPixel("A1", i)
	}
	c.RegisterPixel("B2", 10)
	c.RegisterPixel("B2", 11)

	cfg := FromCompiler(c)

	require.Len(t, cfg.Devices, 2)
	assert.Equal(t, "fadecandy", cfg.Devices[0].Type)
	assert.Equal(t, "A1", cfg.Devices[0].Serial)
	assert.Equal(t, []MapRow{{0, 0, 0, 3}}, cfg.Devices[0].Map)
	assert.Equal(t, "B2", cfg.Devices[1].Serial)
	assert.Equal(t, []MapRow{{0, 3, 10, 2}}, cfg.Devices[1].Map)
}

func TestConfigJSONShape(t *testing.T) {
	c := mapping.NewCompiler()
	c.RegisterPixel("A1", 0)

	data, err := json.MarshalIndent(FromCompiler(c), "", "  ")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"listen": ["127.0.0.1", 7890],
		"verbose": false,
		"color": {"gamma": 2.5, "whitepoint": [1, 1, 1]},
		"devices": [
			{"type": "fadecandy", "serial": "A1", "map": [[0, 0, 0, 1]]}
		]
	}`, string(data))
}

func TestStore(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "fcserver.json")
		store := NewStore(path)

		cfg := Default()
		cfg.Verbose = true
		cfg.Devices = []Device{{Type: "fadecandy", Serial: "A1", Map: []MapRow{{0, 0, 0, 64}}}}
		require.NoError(t, store.Save(cfg))

		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)

		// Files end with a newline so they diff cleanly.
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, byte('\n'), raw[len(raw)-1])
	})

	t.Run("LoadMissingFileReturnsDefault", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "absent.json"))
		cfg, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("LoadRejectsCorruptFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

		_, err := NewStore(path).Load()
		assert.Error(t, err)
	})
}
