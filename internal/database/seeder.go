package database

import (
	"context"
	"fmt"

	"id-collector-api/internal/model"
	"id-collector-api/internal/repository"

	"github.com/rs/zerolog"
)

func ptr[T any](v T) *T { return &v }

// DemoDevices are the records SeedAll writes. Android IDs are fixed so
// reseeding updates instead of duplicating.
func DemoDevices() []model.StoreDeviceRequest {
	return []model.StoreDeviceRequest{
		{
			AndroidID:       ptr("demo-0000000000000001"),
			AdvertisingID:   ptr("38400000-8cf0-11bd-b23e-10b96e40000d"),
			LimitAdTracking: ptr(false),
			DeviceInfo: &model.DeviceInfoPayload{
				Manufacturer:   ptr("Google"),
				Model:          ptr("Pixel 6"),
				OSVersion:      ptr("13"),
				ScreenSize:     ptr("1080x2400"),
				ScreenDensity:  ptr(420),
				DeviceLanguage: ptr("en-US"),
				NetworkType:    ptr("WIFI"),
				BatteryLevel:   ptr(87),
				IsRooted:       ptr(false),
			},
		},
		{
			AndroidID:       ptr("demo-0000000000000002"),
			AdvertisingID:   ptr("6d92078a-8246-4ba4-ae5b-76104861e7dc"),
			LimitAdTracking: ptr(true),
			DeviceInfo: &model.DeviceInfoPayload{
				Manufacturer: ptr("samsung"),
				Model:        ptr("SM-S911B"),
				OSVersion:    ptr("14"),
				RAMTotal:     ptr(int64(8 << 30)),
				StorageTotal: ptr(int64(256 << 30)),
				StorageFree:  ptr(int64(97 << 30)),
			},
		},
		{
			AndroidID:       ptr("demo-0000000000000003"),
			AdvertisingID:   ptr("00000000-0000-0000-0000-000000000000"),
			LimitAdTracking: ptr(true),
			DeviceInfo: &model.DeviceInfoPayload{
				Manufacturer:       ptr("Xiaomi"),
				Model:              ptr("Redmi Note 10"),
				OSVersion:          ptr("11"),
				NetworkType:        ptr("LTE"),
				InstalledAppsCount: ptr(143),
			},
		},
	}
}

// SeedAll upserts the demo devices and returns the total record count.
func SeedAll(ctx context.Context, repo repository.DeviceRepository, log zerolog.Logger) (int64, error) {
	for _, d := range DemoDevices() {
		if err := d.Validate(); err != nil {
			return 0, fmt.Errorf("demo device %s: %w", *d.AndroidID, err)
		}
		rec, err := repo.Upsert(ctx, &d)
		if err != nil {
			return 0, err
		}
		log.Info().Str("android_id", rec.AndroidID).Uint("id", rec.ID).Msg("seeded")
	}
	return repo.Count(ctx)
}
