package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the cache key and filename for a set of parameters",
	Long: `Print the cache key the server would send as ETag for the given
parameters, without rendering anything.`,
	RunE: runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)

	keyCmd.Flags().String("mode", "bump", "Texture mode: bump or clouds")
	keyCmd.Flags().String("params", "", "Texture parameters as a query string")
	keyCmd.Flags().String("preset", "", "Name of a stored preset to start from")
	keyCmd.Flags().Bool("json", false, "Print key and filename as JSON")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, keyCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("key.mode", "mode")
	mustBind("key.params", "params")
	mustBind("key.preset", "preset")
	mustBind("key.json", "json")
}

type keyOutput struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Mode     string `json:"mode"`
}

func runKey(cmd *cobra.Command, args []string) error {
	j, err := resolveJob(cmd.Context(), viper.GetString("key.mode"), viper.GetString("key.params"), viper.GetString("key.preset"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if viper.GetBool("key.json") {
		enc := json.NewEncoder(out)
		return enc.Encode(keyOutput{Key: j.key, Filename: j.filename(), Mode: string(j.mode)})
	}
	_, err = fmt.Fprintf(out, "%s\t%s\n", j.key, j.filename())
	return err
}
