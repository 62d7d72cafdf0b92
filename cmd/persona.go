package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/internal/api"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	personaAliases string
	personaYes     bool

	createFields personaFields
	editFields   personaFields
)

// personaFields holds the persona attribute flags of one command. Only flags
// set on the command line are copied into a PersonaInput.
type personaFields struct {
	name        string
	role        string
	description string
	player      string
	gender      string
	race        string
	className   string
	level       int
	status      string
	faction     string
	alignment   string
}

func (f *personaFields) register(c *cobra.Command, defaultRole string) {
	c.Flags().StringVarP(&f.role, "role", "r", defaultRole, "Role: PC, NPC, Monster, Villain or DM")
	c.Flags().StringVarP(&f.description, "description", "d", "", "Description")
	c.Flags().StringVar(&f.player, "player", "", "Player name")
	c.Flags().StringVar(&f.gender, "gender", "", "Gender")
	c.Flags().StringVar(&f.race, "race", "", "Race")
	c.Flags().StringVar(&f.className, "class", "", "Class")
	c.Flags().IntVar(&f.level, "level", 0, "Level")
	c.Flags().StringVar(&f.status, "status", "", "Status, e.g. Alive or Dead")
	c.Flags().StringVar(&f.faction, "faction", "", "Faction")
	c.Flags().StringVar(&f.alignment, "alignment", "", "Alignment")
}

func (f *personaFields) apply(c *cobra.Command, input *api.PersonaInput) error {
	flags := c.Flags()
	if flags.Changed("name") {
		input.Name = f.name
	}
	if flags.Changed("role") {
		if strings.TrimSpace(f.role) == "" {
			return fmt.Errorf("role cannot be empty")
		}
		input.Role = f.role
	}
	if flags.Changed("status") {
		input.Status = lo.ToPtr(f.status)
	}
	if flags.Changed("level") {
		if f.level < 0 {
			return fmt.Errorf("invalid level: %d", f.level)
		}
		input.Level = lo.ToPtr(f.level)
	}
	for _, opt := range []struct {
		flag  string
		value string
		dst   **string
	}{
		{"description", f.description, &input.Description},
		{"player", f.player, &input.PlayerName},
		{"gender", f.gender, &input.Gender},
		{"race", f.race, &input.Race},
		{"class", f.className, &input.ClassName},
		{"faction", f.faction, &input.Faction},
		{"alignment", f.alignment, &input.Alignment},
	} {
		if flags.Changed(opt.flag) {
			*opt.dst = lo.ToPtr(opt.value)
		}
	}
	return nil
}

var personaCmd = &cobra.Command{
	Use:     "persona",
	Aliases: []string{"personas", "cast"},
	Short:   "Browse and edit the cast of a campaign",
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the personas of a campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}
		personas, err := svc.Personas(cmd.Context(), cid)
		if err != nil {
			return fmt.Errorf("failed to list personas: %w", err)
		}
		displayPersonas(cmd.OutOrStdout(), personas)
		return nil
	},
}

var personaShowCmd = &cobra.Command{
	Use:   "show <persona-id>",
	Short: "Show a persona with its highlights and quotes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "persona")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		view, err := svc.Persona(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load persona %d: %w", id, err)
		}
		displayPersonaView(cmd.OutOrStdout(), view)
		return nil
	},
}

var personaCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Add a persona to a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		input := api.PersonaInput{
			Name:       args[0],
			Role:       createFields.role,
			CampaignID: &cid,
			Aliases:    internal.ParseAliasInput(personaAliases),
		}
		if err := createFields.apply(cmd, &input); err != nil {
			return err
		}

		view, err := svc.CreatePersona(cmd.Context(), input)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Created persona %d: %s (%s)", view.ID, view.Name, view.Role)))
		return nil
	},
}

var personaEditCmd = &cobra.Command{
	Use:   "edit <persona-id>",
	Short: "Edit the name, role or attributes of a persona",
	Long: `Edit a persona. Only the fields given as flags change, everything else
keeps its current value. Aliases are edited with 'questlog persona alias'.`,
	Example: `  questlog persona edit 20 --class Rogue --level 6
  questlog persona edit 21 --name "Lady Ysolde" --role Villain --status Dead`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "persona")
		if err != nil {
			return err
		}
		if !anyLocalFlagSet(cmd) {
			return fmt.Errorf("nothing to change: pass at least one field flag")
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}

		view, err := svc.UpdatePersona(cmd.Context(), id, func(input *api.PersonaInput) error {
			return editFields.apply(cmd, input)
		})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Updated persona %d", view.ID)))
		displayPersonaView(cmd.OutOrStdout(), view)
		return nil
	},
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <persona-id>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "persona")
		if err != nil {
			return err
		}
		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		if !personaYes && !confirm(cmd, fmt.Sprintf("Delete persona %d?", id)) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Cancelled"))
			return nil
		}
		if err := svc.DeletePersona(cmd.Context(), cfg.CampaignID, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Deleted persona %d", id)))
		return nil
	},
}

var personaAliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage the aliases of a persona",
}

var personaAliasAddCmd = &cobra.Command{
	Use:   "add <persona-id> <alias>",
	Short: "Add an alias",
	Long: `Add an alias to a persona. Surrounding whitespace is trimmed. Blank
aliases and aliases the persona already has are ignored.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "persona")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		view, err := svc.AddAlias(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		printAliases(cmd, view)
		return nil
	},
}

var personaAliasRemoveCmd = &cobra.Command{
	Use:     "rm <persona-id> <alias>",
	Aliases: []string{"remove"},
	Short:   "Remove an alias",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "persona")
		if err != nil {
			return err
		}
		svc, _, err := connect()
		if err != nil {
			return err
		}
		view, err := svc.RemoveAlias(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		printAliases(cmd, view)
		return nil
	},
}

var personaMergeCmd = &cobra.Command{
	Use:   "merge <source-id> <target-id>",
	Short: "Merge one persona into another",
	Long: `Merge the source persona into the target. The target keeps its name and
role, gains the source's highlights and quotes, and the source is deleted
by the backend. This cannot be undone.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID, err := parseID(args[0], "source persona")
		if err != nil {
			return err
		}
		targetID, err := parseID(args[1], "target persona")
		if err != nil {
			return err
		}
		if sourceID == targetID {
			return fmt.Errorf("cannot merge persona %d into itself", sourceID)
		}

		svc, cfg, err := connect()
		if err != nil {
			return err
		}
		cid, err := requireCampaign(cfg)
		if err != nil {
			return err
		}

		ask := func(source, target internal.Persona) bool {
			if personaYes {
				return true
			}
			return confirm(cmd, fmt.Sprintf("Merge %q into %q? %q will be deleted.", source.Name, target.Name, source.Name))
		}
		selector, err := svc.MergeSelector(cmd.Context(), cid, ask)
		if err != nil {
			return err
		}

		source, ok := selector.Roster().Get(sourceID)
		if !ok {
			return fmt.Errorf("persona %d is not in campaign %d", sourceID, cid)
		}
		target, ok := selector.Roster().Get(targetID)
		if !ok {
			return fmt.Errorf("persona %d is not in campaign %d", targetID, cid)
		}

		selector.Enter()
		defer selector.Exit()
		if _, err := selector.Select(cmd.Context(), source); err != nil {
			return err
		}
		result, err := selector.Select(cmd.Context(), target)
		if err != nil {
			return err
		}
		if !result.Merged {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), infoStyle.Render("Cancelled"))
			return nil
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✅ Merged %s into %s", result.Source.Name, result.Target.Name)))
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		displayPersonas(cmd.OutOrStdout(), svc.Normalizer().NormalizePersonas(selector.Roster().Personas()))
		return nil
	},
}

func anyLocalFlagSet(cmd *cobra.Command) bool {
	set := false
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		set = set || f.Changed
	})
	return set
}

func printAliases(cmd *cobra.Command, view *internal.PersonaView) {
	aliases := dateStyle.Render("none")
	if len(view.Aliases) > 0 {
		aliases = labelStyle.Render(strings.Join(view.Aliases, ", "))
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", successStyle.Render("✅"), nameStyle.Render(view.Name), aliases)
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes, including end of input, is a no.
func confirm(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", warningStyle.Render(question))
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	rootCmd.AddCommand(personaCmd)
	personaCmd.AddCommand(personaListCmd, personaShowCmd, personaCreateCmd, personaEditCmd, personaDeleteCmd, personaAliasCmd, personaMergeCmd)
	personaAliasCmd.AddCommand(personaAliasAddCmd, personaAliasRemoveCmd)

	createFields.register(personaCreateCmd, internal.RoleNPC)
	personaCreateCmd.Flags().StringVar(&personaAliases, "aliases", "", "Comma-separated aliases")
	personaEditCmd.Flags().StringVarP(&editFields.name, "name", "n", "", "New name")
	editFields.register(personaEditCmd, "")

	personaDeleteCmd.Flags().BoolVarP(&personaYes, "yes", "y", false, "Do not ask for confirmation")
	personaMergeCmd.Flags().BoolVarP(&personaYes, "yes", "y", false, "Do not ask for confirmation")
}
