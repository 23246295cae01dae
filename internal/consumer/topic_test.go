package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		wantTeam string
		wantFF   string
		wantErr  bool
	}{
		{
			name:     "标准主题",
			topic:    "raw/ECG/Team_A/FF_01",
			wantTeam: "Team_A",
			wantFF:   "FF_01",
		},
		{
			name:     "带特殊字符的标识",
			topic:    "raw/ECG/station-7/ff.42",
			wantTeam: "station-7",
			wantFF:   "ff.42",
		},
		{
			name:    "缺少 ff 段",
			topic:   "raw/ECG/Team_A",
			wantErr: true,
		},
		{
			name:    "多余的层级",
			topic:   "raw/ECG/Team_A/FF_01/extra",
			wantErr: true,
		},
		{
			name:    "空的 team 段",
			topic:   "raw/ECG//FF_01",
			wantErr: true,
		},
		{
			name:    "空的 ff 段",
			topic:   "raw/ECG/Team_A/",
			wantErr: true,
		},
		{
			name:    "空字符串",
			topic:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, ff, err := ParseTopic(tt.topic)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTeam, team)
			assert.Equal(t, tt.wantFF, ff)
		})
	}
}
