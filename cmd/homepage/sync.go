package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record a posts row for every Markdown file in the blog tree",
	Long: `Walks public/files/blog, reads each post's front matter, and upserts
one posts row per file. Titles come from the front matter title, the
first "# " heading, or the file name; dates from the front matter date
or, for new rows, the file's modification time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Printf("Syncing posts from %s\n", app.Posts.Root())
		res, err := app.Sync(cmd.Context())
		if err != nil {
			return err
		}
		for _, path := range res.Skipped {
			fmt.Printf("  skipped %s\n", path)
		}
		fmt.Printf("Inserted %d, updated %d, skipped %d\n", res.Inserted, res.Updated, len(res.Skipped))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
