package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ns3-sweep/ccsweep/sweep"
)

// planEntry is one enumerated run as printed by `ccsweep plan`.
type planEntry struct {
	Campaign string `yaml:"campaign"`
	Index    int    `yaml:"index"`
	Instance string `yaml:"instance"`
	CC1      string `yaml:"cc1"`
	CC2      string `yaml:"cc2"`
	LossRate int    `yaml:"loss_rate"`
	Folder   string `yaml:"folder"`
	Args     string `yaml:"args"`
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the runs a sweep would launch, without launching anything",
	Run: func(cmd *cobra.Command, args []string) {
		campaigns, err := selectCampaigns(splitList(cfg.GetStringSlice("campaigns")), cfg.GetString("plan"))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := writePlan(cmd.OutOrStdout(), campaigns, cfg.GetString("format")); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func planEntries(campaigns []sweep.Campaign) []planEntry {
	var entries []planEntry
	for _, c := range campaigns {
		for i, e := range c.Configs {
			entries = append(entries, planEntry{
				Campaign: c.Name,
				Index:    i,
				Instance: e.Instance,
				CC1:      e.CC1,
				CC2:      e.CC2,
				LossRate: e.LossRate,
				Folder:   e.OutputFolder(),
				Args:     e.CommandTail(),
			})
		}
	}
	return entries
}

func writePlan(w io.Writer, campaigns []sweep.Campaign, format string) error {
	entries := planEntries(campaigns)
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CAMPAIGN\tINDEX\tFOLDER\tARGS")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%d\t%s/%s\t%s\n", e.Campaign, e.Index, e.Folder, e.Instance, e.Args)
		}
		fmt.Fprintf(tw, "\n%d runs\n", len(entries))
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (valid: table, yaml)", format)
	}
}

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List the built-in campaigns",
	Run: func(cmd *cobra.Command, args []string) {
		writeCampaignList(cmd.OutOrStdout())
	},
}

func writeCampaignList(w io.Writer) {
	defaults := make(map[string]bool)
	for _, n := range sweep.DefaultCampaignNames() {
		defaults[n] = true
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRUNS\tDEFAULT\tCC1\tCC2\tLOSS\tINSTANCES")
	for _, g := range sweep.BuiltinGrids() {
		cc2 := strings.Join(g.CC2, ",")
		if g.Paired {
			cc2 = "(same as cc1)"
		}
		loss := make([]string, 0, len(g.LossRates))
		for _, l := range g.LossRates {
			loss = append(loss, fmt.Sprint(l))
		}
		fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\t%s\t%s\n", g.Name, g.Size(), defaults[g.Name],
			strings.Join(g.CC1, ","), cc2, strings.Join(loss, ","), strings.Join(g.Instances, ","))
	}
	_ = tw.Flush()
}

func init() {
	addCampaignFlags(planCmd.Flags())
	planCmd.Flags().String("format", "table", "Output format (table, yaml)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(campaignsCmd)
}
