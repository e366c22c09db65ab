package model

import (
	"time"

	"gorm.io/datatypes"
)

// DeviceRecord is one row of device_ids. AndroidID is the natural key used for upserts.
type DeviceRecord struct {
	ID              uint                           `json:"id" gorm:"primaryKey"`
	AndroidID       string                         `json:"android_id" gorm:"column:android_id;size:191;uniqueIndex;not null"`
	AdvertisingID   string                         `json:"advertising_id" gorm:"column:advertising_id;size:191;index"`
	LimitAdTracking bool                           `json:"limit_ad_tracking" gorm:"column:limit_ad_tracking;not null;default:false"`
	DeviceInfo      datatypes.JSONType[DeviceInfo] `json:"device_info" gorm:"column:device_info"`
	CreatedAt       time.Time                      `json:"created_at" gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt       time.Time                      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:false"`
}

func (DeviceRecord) TableName() string {
	return "device_ids"
}

// DeviceInfo is stored as a JSON blob inside DeviceRecord, never on its own.
// Optional fields stay nil (null in JSON) when the client did not send them.
type DeviceInfo struct {
	Manufacturer       string  `json:"manufacturer"`
	Model              string  `json:"model"`
	OSVersion          string  `json:"os_version"`
	ScreenSize         *string `json:"screen_size"`
	ScreenDensity      *int    `json:"screen_density"`
	DeviceLanguage     *string `json:"device_language"`
	NetworkType        *string `json:"network_type"`
	RAMTotal           *int64  `json:"ram_total"`
	StorageTotal       *int64  `json:"storage_total"`
	StorageFree        *int64  `json:"storage_free"`
	BatteryLevel       *int    `json:"battery_level"`
	IsRooted           *bool   `json:"is_rooted"`
	InstalledAppsCount *int    `json:"installed_apps_count"`
}

// Info returns the decoded device info.
func (d *DeviceRecord) Info() DeviceInfo {
	return d.DeviceInfo.Data()
}
