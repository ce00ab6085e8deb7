package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// lookupEnv возвращает значение переменной, пустая переменная считается незаданной.
func lookupEnv(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	return val, ok && val != ""
}

// parseDuration принимает "200ms", "1s" или число миллисекунд.
func parseDuration(val string) (time.Duration, error) {
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	ms, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", val)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// setField присваивает полю значение переменной с приведением к типу поля.
func setField(f reflect.Value, raw string) error {
	switch f.Interface().(type) {
	case string:
		f.SetString(raw)
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		f.SetInt(int64(v))
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(v)
	case time.Duration:
		v, err := parseDuration(raw)
		if err != nil {
			return err
		}
		f.SetInt(int64(v))
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}
