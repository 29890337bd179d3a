package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pawsync/pawsync/internal/pet"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sadStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	barFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cardStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

var statusCmd = &cobra.Command{
	Use:   "status [pet-id]",
	Short: "Show pet progress",
	Long:  `Show heart fill, level, quest, streak and sleep state for one pet or all of them.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		var recs []*pet.Record
		if len(args) == 1 {
			recs = []*pet.Record{eng.svc.Get(args[0])}
		} else {
			recs = eng.svc.List()
		}
		if len(recs) == 0 {
			fmt.Println(dimStyle.Render("No pets yet. Try: pawd adopt <pet-id>"))
			return nil
		}

		for _, rec := range recs {
			fmt.Println(cardStyle.Render(renderPet(rec, eng.svc.HeartFillPercentage(rec.PetID))))
		}

		if settings := eng.svc.Settings(); settings.CurrentSelectedPetID != "" {
			fmt.Println(dimStyle.Render("selected: " + settings.CurrentSelectedPetID))
		}
		return nil
	},
}

func renderPet(rec *pet.Record, fill int) string {
	name := rec.PetName
	if name == "" {
		name = rec.PetID
	}
	header := titleStyle.Render(name) + dimStyle.Render(" ("+rec.PetID+")")
	if rec.General.IsCurrentlySelected {
		header += " " + selectedStyle.Render("*")
	}

	var b strings.Builder
	b.WriteString(header + "\n")
	fmt.Fprintf(&b, "heart  %s %d%%\n", heartBar(fill), fill)
	fmt.Fprintf(&b, "level  %d (%d earned)\n", rec.Level.CurrentLevel, rec.Level.TotalEarnedCurrency)
	fmt.Fprintf(&b, "stage  %s, streak %d\n", rec.Evolution.Stage, rec.Evolution.Streak)
	fmt.Fprintf(&b, "quest  %s", rec.Quest.CurrentCategory)
	switch {
	case rec.Sleep.IsAsleep:
		b.WriteString("\n" + sadStyle.Render("asleep until "+rec.Sleep.SleepEndAt.Local().Format("15:04")))
	case rec.Sleep.WillBeSadOnWake:
		b.WriteString("\n" + sadStyle.Render("sad, needs care"))
	}
	return b.String()
}

func heartBar(pct int) string {
	const width = 20
	full := pct * width / 100
	return barFullStyle.Render(strings.Repeat("█", full)) + dimStyle.Render(strings.Repeat("░", width-full))
}
