package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <uri>",
	Short: "Forward a deep link to the running shell",
	Long: `Forward a wraith:// link to the running shell, starting it first if needed.

Links are delivered only to windows attached at that moment; a link that
arrives while no window is attached is dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	if err := ensureInstance(); err != nil {
		return err
	}

	conn, client, err := connectInstance()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	st, err := client.GetStatus(ctx)
	if err != nil {
		return rpcError(err)
	}

	ev, err := client.OpenLink(ctx, args[0])
	if err != nil {
		return rpcError(err)
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("Forwarded"), ev.Fields["url"].GetStringValue())
	if st.Fields["subscribers"].GetNumberValue() == 0 {
		fmt.Println(styleWarning.Render("No window is attached; the link was dropped."))
	}
	return nil
}
