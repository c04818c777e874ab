package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_Check(t *testing.T) {
	s := NewStoreFrom(Manifest{Updates: Demo()})
	_, err := s.Upsert("1.3", Fields{Forced: true})
	require.NoError(t, err)
	m := s.Manifest()

	tests := []struct {
		name      string
		installed string
		available bool
		forced    bool
	}{
		{"older client", "1.1", true, true},
		{"current client", "1.3", false, false},
		{"newer client", "2.0", false, false},
		{"unknown label", "dev", true, true},
		{"1.10 reads as 1.1", "1.10", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Check(tt.installed)
			assert.Equal(t, "1.3", res.LatestVersion)
			assert.Equal(t, tt.available, res.UpdateAvailable)
			assert.Equal(t, tt.forced, res.Forced)
			if tt.available {
				require.NotNil(t, res.Update)
				assert.Equal(t, "System update v1.3", res.Update.Description)
			} else {
				assert.Nil(t, res.Update)
			}
		})
	}
}

func TestManifest_Check_Empty(t *testing.T) {
	res := NewStore().Manifest().Check("1.0")
	assert.False(t, res.UpdateAvailable)
	assert.Equal(t, "", res.LatestVersion)
}
