// Package devices is the read-only view of devices that checked in with the
// update endpoint. The data comes from a pluggable Source; the package only
// deduplicates, classifies and caches it.
package devices

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// OnlineWindow is how recently a device must have been seen to count as online.
const OnlineWindow = 5 * time.Minute

type Device struct {
	DeviceID         string    `json:"device_id"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	AndroidVersion   string    `json:"android_version"`
	AppVersion       string    `json:"app_version"`
	LastSeen         time.Time `json:"last_seen"`
	RegistrationTime time.Time `json:"registration_time"`
}

// IsOnline reports whether d checked in less than OnlineWindow before now.
func IsOnline(d Device, now time.Time) bool {
	return now.Sub(d.LastSeen) < OnlineWindow
}

// Dedupe keeps the most recently seen record per device id and returns them
// newest first. Records without an id are dropped.
func Dedupe(in []Device) []Device {
	latest := make(map[string]Device, len(in))
	for _, d := range in {
		if d.DeviceID == "" {
			continue
		}
		if cur, ok := latest[d.DeviceID]; !ok || d.LastSeen.After(cur.LastSeen) {
			latest[d.DeviceID] = d
		}
	}

	out := make([]Device, 0, len(latest))
	for _, d := range latest {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].DeviceID < out[j].DeviceID
	})
	return out
}

// CountOnline returns how many of ds are online at now.
func CountOnline(ds []Device, now time.Time) int {
	n := 0
	for _, d := range ds {
		if IsOnline(d, now) {
			n++
		}
	}
	return n
}

// feedTime accepts an RFC3339 string or a number of epoch milliseconds.
type feedTime time.Time

func (t *feedTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = feedTime(time.Time{})
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*t = feedTime(time.Time{})
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = feedTime(time.UnixMilli(ms).UTC())
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*t = feedTime(parsed.UTC())
		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	*t = feedTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}

// feedDevice is the wire shape produced by check-in feeds.
type feedDevice struct {
	DeviceID         string   `json:"device_id"`
	Brand            string   `json:"brand"`
	Model            string   `json:"model"`
	AndroidVersion   string   `json:"android_version"`
	AppVersion       string   `json:"app_version"`
	LastSeen         feedTime `json:"last_seen"`
	RegistrationTime feedTime `json:"registration_time"`
}

func (f feedDevice) device() Device {
	return Device{
		DeviceID:         f.DeviceID,
		Brand:            f.Brand,
		Model:            f.Model,
		AndroidVersion:   f.AndroidVersion,
		AppVersion:       f.AppVersion,
		LastSeen:         time.Time(f.LastSeen),
		RegistrationTime: time.Time(f.RegistrationTime),
	}
}

// DecodeFeed parses either a bare JSON array of devices or an object with a
// "devices" array.
func DecodeFeed(data []byte) ([]Device, error) {
	data = bytes.TrimSpace(data)

	var raw []feedDevice
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Devices []feedDevice `json:"devices"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode device feed: %w", err)
		}
		raw = wrapped.Devices
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode device feed: %w", err)
	}

	out := make([]Device, len(raw))
	for i, f := range raw {
		out[i] = f.device()
	}
	return out, nil
}
