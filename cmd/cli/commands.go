package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"

	"testimonials/internal/app"
	"testimonials/internal/reviews"
	"testimonials/pkg/models"
)

func newListCmd(o *rootOptions) *cobra.Command {
	var asJSON bool
	var lang string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored reviews",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app.App, _ []string) error {
			items := a.Service.List(cmd.Context())
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			text := reviews.ParseLang(lang).Text()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REF\tSTARS\tDATE\tCOMMENT")
			for _, b := range reviews.Render(items, reviews.ParseLang(lang)) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Ref, b.Stars, b.Date, b.Comment)
				if b.Reply != "" {
					fmt.Fprintf(tw, "\t\t\t%s%s\n", text.ReplyLabel, b.Reply)
				}
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON")
	cmd.Flags().StringVar(&lang, "lang", "en", "label language (en, es)")
	return cmd
}

func newSubmitCmd(o *rootOptions) *cobra.Command {
	var rating int
	var comment, lang string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Add a review",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app.App, _ []string) error {
			review, err := a.Service.Submit(cmd.Context(), reviews.SubmitInput{
				Rating:  &rating,
				Comment: &comment,
				Lang:    reviews.ParseLang(lang),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", review.ID)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "star rating 1-5")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "review text")
	cmd.Flags().StringVar(&lang, "lang", "en", "date language (en, es)")
	_ = cmd.MarkFlagRequired("rating")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}

func newReplyCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <ref> <text>",
		Short: "Set the reply on a review (ID or position)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(o, func(cmd *cobra.Command, a *app.App, args []string) error {
			review, err := a.Service.Reply(cmd.Context(), args[0], args[1])
			if err != nil {
				if errors.Is(err, reviews.ErrReviewNotFound) {
					return fmt.Errorf("no review %q", args[0])
				}
				return err
			}
			ref := strings.TrimSpace(args[0])
			if models.SafeID(review.ID) {
				ref = review.ID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replied to %s\n", ref)
			return nil
		}),
	}
}

func newImportCmd(o *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append reviews from a JSON storage dump or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(o, func(cmd *cobra.Command, a *app.App, args []string) error {
			in, err := readDump(args[0], format)
			if err != nil {
				return err
			}
			added, err := a.Service.Import(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d reviews from %s\n", added, len(in), args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "", "json or csv (default from extension)")
	return cmd
}

func readDump(path, format string) ([]models.Review, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "csv":
		return reviews.ReadCSV(f)
	case "json", "":
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return reviews.Decode(string(raw))
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func newExportCmd(o *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all reviews as CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app.App, _ []string) error {
			items := a.Service.List(cmd.Context())
			if out == "" || out == "-" {
				return reviews.WriteCSV(cmd.OutOrStdout(), items)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := reviews.WriteCSV(f, items); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d reviews to %s\n", len(items), out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default stdout)")
	return cmd
}

func newSeedCmd(o *rootOptions) *cobra.Command {
	var count int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add random demo reviews",
		Args:  cobra.NoArgs,
		RunE: withApp(o, func(cmd *cobra.Command, a *app.App, _ []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			f := faker.NewWithSeed(rand.NewSource(seed))

			for i := 0; i < count; i++ {
				rating := f.IntBetween(1, 5)
				comment := f.Lorem().Sentence(f.IntBetween(4, 14))
				lang := reviews.LangEN
				if f.Boolean().Bool() {
					lang = reviews.LangES
				}
				review, err := a.Service.Submit(cmd.Context(), reviews.SubmitInput{
					Rating:  &rating,
					Comment: &comment,
					Lang:    lang,
				})
				if err != nil {
					return err
				}
				if f.IntBetween(0, 3) == 0 {
					if _, err := a.Service.Reply(cmd.Context(), review.ID, f.Lorem().Sentence(5)); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d reviews\n", count)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of reviews")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default time based)")
	return cmd
}
