package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/retag/internal/constants"
	"github.com/Paintersrp/retag/internal/state"
	"github.com/Paintersrp/retag/pkg/cmd/apply"
	"github.com/Paintersrp/retag/pkg/cmd/settings"
	"github.com/Paintersrp/retag/pkg/cmd/tag"
	"github.com/Paintersrp/retag/pkg/cmd/tags"
)

var (
	vaultDir string
	logLevel string
)

func NewCmdRoot(session *state.Session) *cobra.Command {
	tagCmd := tag.NewCmdTag(session.Open)

	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Add and remove frontmatter tags across many notes at once.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			Pick notes or whole folders of a markdown vault, type the tags to add
			and the tags to remove, and every selected note's header is rewritten
			in one pass. Notes without a header get one.

			Running without a command opens the interactive editor.
		`),
		Example: heredoc.Doc(`
			retag
			retag apply projects --add "work, q3" --remove draft
			retag tags --query pro
		`),
		SilenceUsage: true,
		RunE:         tagCmd.RunE,
	}

	cmd.PersistentFlags().
		StringVar(&vaultDir, "vault", "", "Vault directory, overriding vaultdir in the settings file")
	cmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	viper.BindPFlag("vaultdir", cmd.PersistentFlags().Lookup("vault"))
	viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		tagCmd,
		apply.NewCmdApply(session.Open),
		tags.NewCmdTags(session.Open),
		settings.NewCmdSettings(),
	)

	return cmd
}
