package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var adoptCmd = &cobra.Command{
	Use:   "adopt <pet-id>",
	Short: "Adopt a pet",
	Long:  `Adopt a pet: name it, mark it owned and make it the selected pet.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		petID := args[0]

		var (
			name    string
			confirm = true
		)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name your pet").
					Placeholder(petID).
					Value(&name),
				huh.NewConfirm().
					Title(fmt.Sprintf("Adopt %s and make it your companion?", petID)).
					Value(&confirm),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !confirm {
			fmt.Println("Maybe next time.")
			return nil
		}
		if name == "" {
			name = petID
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		eng.svc.SetOwnership(petID, true)
		eng.svc.SetName(petID, name)
		eng.svc.SelectPet(petID)

		fmt.Printf("%s adopted %s!\n", name, selectedStyle.Render("♥"))
		return nil
	},
}
