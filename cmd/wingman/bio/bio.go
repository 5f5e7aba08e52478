// Package biocmder provides the bio commands writing and refining dating
// profile descriptions.
package biocmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/cmd/wingman/cmdutil"
	"github.com/papercomputeco/wingman/pkg/cliui"
	"github.com/papercomputeco/wingman/pkg/dating"
)

const bioLongDesc string = `Write and refine your dating profile description.

The latest description is saved on your profile and shown by "wingman whoami".

Style options:
  --tone    ` + "friendly, confident, mysterious, professional, casual" + `
  --length  ` + "short, medium, long" + `
  --focus   ` + "personality, interests, goals, balanced" + `
  --humor   ` + "minimal, moderate, high"

const bioShortDesc string = "Write your profile description"

// styleFlags are the description options shared by both subcommands.
type styleFlags struct {
	tone   string
	length string
	focus  string
	humor  string
}

func (f *styleFlags) add(cmd *cobra.Command) {
	d := dating.DefaultBioOptions()
	cmd.Flags().StringVar(&f.tone, "tone", string(d.Tone), "Tone ("+strings.Join(dating.Values(dating.Tones), ", ")+")")
	cmd.Flags().StringVar(&f.length, "length", string(d.Length), "Length ("+strings.Join(dating.Values(dating.Lengths), ", ")+")")
	cmd.Flags().StringVar(&f.focus, "focus", string(d.Focus), "Focus ("+strings.Join(dating.Values(dating.Focuses), ", ")+")")
	cmd.Flags().StringVar(&f.humor, "humor", string(d.Humor), "Humor ("+strings.Join(dating.Values(dating.HumorLevels), ", ")+")")
}

func (f *styleFlags) options() dating.BioOptions {
	return dating.BioOptions{
		Tone:   dating.Tone(f.tone),
		Length: dating.Length(f.length),
		Focus:  dating.Focus(f.focus),
		Humor:  dating.Humor(f.humor),
	}
}

func NewBioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bio",
		Short: bioShortDesc,
		Long:  bioLongDesc,
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newRefineCmd())

	return cmd
}

const generateLongDesc string = `Generate a profile description from a few facts about you.

Age and occupation are required. The age defaults to the one on your profile.

Examples:
  wingman bio generate --occupation "nurse" --interests "climbing, jazz"
  wingman bio generate --occupation chef --tone mysterious --length short`

type generateCommander struct {
	flags cmdutil.ClientFlags
	style styleFlags

	age        int
	occupation string
	interests  string
}

func newGenerateCmd() *cobra.Command {
	cmder := &generateCommander{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a profile description",
		Long:  generateLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmder.style.add(cmd)
	cmd.Flags().IntVar(&cmder.age, "age", 0, "Your age (defaults to your profile)")
	cmd.Flags().StringVar(&cmder.occupation, "occupation", "", "What you do")
	cmd.Flags().StringVar(&cmder.interests, "interests", "", "Hobbies and interests")

	return cmd
}

func (c *generateCommander) run(cmd *cobra.Command) error {
	env, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := env.Session()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	age := c.age
	if age == 0 {
		u, err := env.Client.GetUser(ctx, s.UserID)
		if err != nil {
			return fmt.Errorf("fetching profile: %w", err)
		}
		age = u.Age
	}

	req := dating.BioRequest{
		UserID: s.UserID,
		Basics: dating.BioBasics{
			Age:        age,
			Occupation: strings.TrimSpace(c.occupation),
			Interests:  strings.TrimSpace(c.interests),
		},
		Options: c.style.options(),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	var description string
	err = cliui.Step(cmd.ErrOrStderr(), "Writing your description", func() error {
		var err error
		description, err = env.Client.GenerateDescription(ctx, req)
		return err
	})
	if err != nil {
		return cmdutil.DescribeError(err)
	}

	printDescription(cmd.OutOrStdout(), description)
	return nil
}

const refineLongDesc string = `Rewrite a profile description.

The description is taken from the argument, or from stdin when none is given.
--adjustments says what to change.

Examples:
  wingman bio refine "I like long walks." --adjustments "more playful"
  wingman bio refine --tone confident < bio.txt`

type refineCommander struct {
	flags cmdutil.ClientFlags
	style styleFlags

	adjustments string
}

func newRefineCmd() *cobra.Command {
	cmder := &refineCommander{}

	cmd := &cobra.Command{
		Use:   "refine [description]",
		Short: "Refine a profile description",
		Long:  refineLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmdutil.AddClientFlags(cmd, &cmder.flags)
	cmder.style.add(cmd)
	cmd.Flags().StringVarP(&cmder.adjustments, "adjustments", "a", "", "What to change")

	return cmd
}

func (c *refineCommander) run(cmd *cobra.Command, args []string) error {
	var description string
	if len(args) == 1 {
		description = args[0]
	} else {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading description: %w", err)
		}
		description = string(raw)
	}

	env, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := env.Session()
	if err != nil {
		return err
	}

	req := dating.BioRefineRequest{
		UserID:      s.UserID,
		Description: strings.TrimSpace(description),
		Adjustments: strings.TrimSpace(c.adjustments),
		Options:     c.style.options(),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var refined string
	err = cliui.Step(cmd.ErrOrStderr(), "Refining your description", func() error {
		var err error
		refined, err = env.Client.RefineDescription(ctx, req)
		return err
	})
	if err != nil {
		return cmdutil.DescribeError(err)
	}

	printDescription(cmd.OutOrStdout(), refined)
	return nil
}

func printDescription(out io.Writer, description string) {
	fmt.Fprintf(out, "\n%s\n\n", description)
}
