package config

// ConfigInitError reports settings that must be fixed before any command can
// run.
type ConfigInitError struct {
	msg string
}

func (e *ConfigInitError) Error() string {
	return e.msg
}
