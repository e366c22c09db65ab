package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) (*StoreDeviceRequest, error) {
	t.Helper()
	var req StoreDeviceRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return nil, DecodeError(err)
	}
	return &req, req.Validate()
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestStoreDeviceRequest_Valid(t *testing.T) {
	req, err := decode(t, `{
		"android_id": "abc123",
		"advertising_id": "",
		"limit_ad_tracking": false,
		"device_info": {"manufacturer": "Google", "model": "Pixel 6", "os_version": "13", "ram_total": 8589934592, "is_rooted": false}
	}`)
	require.NoError(t, err)

	rec := req.ToRecord()
	assert.Equal(t, "abc123", rec.AndroidID)
	assert.Equal(t, "", rec.AdvertisingID)
	assert.False(t, rec.LimitAdTracking)

	info := rec.Info()
	assert.Equal(t, "Google", info.Manufacturer)
	assert.Equal(t, "Pixel 6", info.Model)
	assert.Equal(t, "13", info.OSVersion)
	require.NotNil(t, info.RAMTotal)
	assert.Equal(t, int64(8589934592), *info.RAMTotal)
	require.NotNil(t, info.IsRooted)
	assert.False(t, *info.IsRooted)
	assert.Nil(t, info.ScreenSize)
	assert.Nil(t, info.BatteryLevel)
}

func TestStoreDeviceRequest_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "missing manufacturer",
			body: `{"android_id":"a","advertising_id":"b","limit_ad_tracking":true,"device_info":{"model":"m","os_version":"1"}}`,
			want: []string{"device_info.manufacturer"},
		},
		{
			name: "missing device_info",
			body: `{"android_id":"a","advertising_id":"b","limit_ad_tracking":true}`,
			want: []string{"device_info"},
		},
		{
			name: "empty android_id",
			body: `{"android_id":"","advertising_id":"b","limit_ad_tracking":true,"device_info":{"manufacturer":"x","model":"m","os_version":"1"}}`,
			want: []string{"android_id"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: []string{"android_id", "advertising_id", "limit_ad_tracking", "device_info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.body)
			assert.ElementsMatch(t, tt.want, fields(t, err))
		})
	}
}

func TestStoreDeviceRequest_TooLong(t *testing.T) {
	long := strings.Repeat("x", 192)

	_, err := decode(t, `{"android_id":"`+long+`","advertising_id":"`+long+`","limit_ad_tracking":true,"device_info":{"manufacturer":"x","model":"m","os_version":"1"}}`)
	assert.ElementsMatch(t, []string{"android_id", "advertising_id"}, fields(t, err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at most 191 characters", verr.Fields[0].Message)

	_, err = decode(t, `{"android_id":"`+long[:191]+`","advertising_id":"b","limit_ad_tracking":true,"device_info":{"manufacturer":"x","model":"m","os_version":"1"}}`)
	assert.NoError(t, err)
}

func TestStoreDeviceRequest_WrongTypes(t *testing.T) {
	_, err := decode(t, `{"android_id":"a","advertising_id":"b","limit_ad_tracking":"yes","device_info":{"manufacturer":"x","model":"m","os_version":"1"}}`)
	assert.Equal(t, []string{"limit_ad_tracking"}, fields(t, err))

	_, err = decode(t, `{"android_id":"a","advertising_id":"b","limit_ad_tracking":true,"device_info":{"manufacturer":"x","model":"m","os_version":"1","screen_density":"high"}}`)
	assert.Equal(t, []string{"device_info.screen_density"}, fields(t, err))
}

func TestDecodeError_Syntax(t *testing.T) {
	_, err := decode(t, `{"android_id":`)
	assert.Equal(t, []string{"body"}, fields(t, err))
	assert.Contains(t, err.Error(), "validation failed")
}
