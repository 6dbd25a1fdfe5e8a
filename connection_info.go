package hostsession

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// ResolveConnectionInfo builds the parameters for one connection to host.
//
// Defaults are the host, the auth username and DefaultReadyTimeout. The private
// key is used when present, the password otherwise. overrides is applied last and
// may replace any field, including host and credentials.
func ResolveConnectionInfo(host string, auth Auth, overrides Overrides) (ConnectionInfo, error) {
	info := ConnectionInfo{
		Host:         host,
		Username:     auth.Username,
		ReadyTimeout: DefaultReadyTimeout,
	}

	if auth.PrivateKey != "" {
		info.PrivateKey = auth.PrivateKey
	} else {
		info.Password = auth.Password
	}

	if len(overrides) == 0 {
		return info, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       durationHook,
		WeaklyTypedInput: true,
		Result:           &info,
	})
	if err != nil {
		return ConnectionInfo{}, fmt.Errorf("failed to build overrides decoder: %w", err)
	}

	if err := decoder.Decode(map[string]any(overrides)); err != nil {
		return ConnectionInfo{}, fmt.Errorf("invalid ssh overrides: %w", err)
	}

	return info, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationHook decodes numbers as milliseconds and strings as Go durations.
// A numeric string is treated as milliseconds too.
func durationHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}

	v := reflect.ValueOf(data)

	switch v.Kind() { //nolint:exhaustive // remaining kinds are left to mapstructure
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if d, ok := data.(time.Duration); ok {
			return d, nil
		}

		return time.Duration(v.Int()) * time.Millisecond, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(v.Uint()) * time.Millisecond, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(v.Float() * float64(time.Millisecond)), nil
	case reflect.String:
		s := v.String()
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}

		return time.ParseDuration(s)
	default:
		return data, nil
	}
}
