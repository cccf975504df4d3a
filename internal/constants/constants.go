package constants

const (
	Version        = `0.1.0`
	AppName        = `retag`
	ConfigFile     = `settings`
	ConfigFileType = `yaml`
	ConfigDir      = `/.retag/`
	EnvPrefix      = `RETAG`
	LogFile        = `retag.log`

	// NoteExt is the only document extension the vault store enumerates.
	NoteExt = `.md`

	// SuggestionLimit caps the tag suggestions shown while typing.
	SuggestionLimit = 8
)
