package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawsync/pawsync/internal/pet"
)

var feedCmd = &cobra.Command{
	Use:   "feed <pet-id>",
	Short: "Feed the pet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		rec, err := eng.svc.Feed(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Fed %s (%d this cycle, heart %d%%)\n",
			args[0], rec.Heart.FeedCount, eng.svc.HeartFillPercentage(args[0]))
		return nil
	},
}

var adventureCmd = &cobra.Command{
	Use:   "adventure <pet-id> <category> <amount>",
	Short: "Credit currency earned in an adventure",
	Long: `Credit adventure currency to a category (house, food, travel, friend,
story). Currency drives the heart cycle, level progression and quest
completion.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("amount must be a number: %w", err)
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		rec, err := eng.svc.AddAdventureCurrency(args[0], pet.Category(args[1]), amount)
		if err != nil {
			return err
		}
		fmt.Printf("%s earned %d in %s (total %d, level %d)\n",
			args[0], amount, args[1], rec.Currency[pet.Category(args[1])], rec.Level.CurrentLevel)
		return nil
	},
}

var sleepDuration time.Duration

var sleepCmd = &cobra.Command{
	Use:   "sleep <pet-id>",
	Short: "Put the pet to sleep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		rec, err := eng.svc.PutToSleep(args[0], sleepDuration)
		if err != nil {
			return err
		}
		fmt.Printf("%s is asleep until %s (cycle %d)\n",
			args[0], rec.Sleep.SleepEndAt.Local().Format("15:04"), rec.Sleep.SleepCycles)
		return nil
	},
}

var wakeCmd = &cobra.Command{
	Use:   "wake <pet-id>",
	Short: "Wake the pet early",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if _, err := eng.svc.Wake(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s woke up grumpy. A snack would help.\n", args[0])
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <pet-id>",
	Short: "Make a pet the selected one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		eng.svc.SelectPet(args[0])
		fmt.Printf("%s is now selected\n", args[0])
		return nil
	},
}

var resetAll bool

var resetCmd = &cobra.Command{
	Use:   "reset [pet-id]",
	Short: "Reset pet progress",
	Long:  `Reset one pet to a fresh record, or wipe everything with --all.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if resetAll {
			eng.svc.ResetAll()
			fmt.Println("All local pet data wiped")
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("specify a pet id or --all")
		}
		eng.svc.ResetPet(args[0])
		fmt.Printf("%s starts over\n", args[0])
		return nil
	},
}

func init() {
	sleepCmd.Flags().DurationVar(&sleepDuration, "for", 0, "nap length (default 1h)")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "wipe every pet and the settings")
}
