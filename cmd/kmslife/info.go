package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thierryreding/kmslife/kms"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   `info [DEVICE]`,
	Short: `show connectors, modes and pipes of a card`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(infoFunc(cmd, args))
	},
}

var encoderTypeNames = []string{
	`NONE`, `DAC`, `TMDS`, `LVDS`, `TVDAC`, `VIRTUAL`, `DSI`, `DPMST`, `DPI`,
}

func encoderTypeName(t uint32) string {
	if int(t) < len(encoderTypeNames) {
		return encoderTypeNames[t]
	}
	return fmt.Sprintf(`type %d`, t)
}

var (
	styleCard         = lipgloss.NewStyle().Bold(true)
	styleConnector    = lipgloss.NewStyle().Bold(true)
	styleConnected    = lipgloss.NewStyle().Foreground(lipgloss.Color(`10`))
	styleDisconnected = lipgloss.NewStyle().Foreground(lipgloss.Color(`9`))
)

func infoFunc(cmd *cobra.Command, args []string) func() error {
	return func() error {
		var path string
		if len(args) > 0 {
			path = args[0]
		} else {
			var err error
			if path, err = kms.FindCard(); err != nil {
				return err
			}
		}
		dev, err := kms.Open(path)
		if err != nil {
			return err
		}
		defer dev.Close()

		res, err := dev.Resources()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d connectors, %d encoders, %d crtcs, fb %dx%d to %dx%d\n",
			styleCard.Render(path),
			len(res.Connectors), len(res.Encoders), len(res.CRTCs),
			res.MinWidth, res.MinHeight, res.MaxWidth, res.MaxHeight)

		for _, id := range res.Connectors {
			conn, err := dev.Connector(id)
			if err != nil {
				return err
			}
			status := styleDisconnected.Render(conn.Status.String())
			if conn.Status == kms.StatusConnected {
				status = styleConnected.Render(conn.Status.String())
			}
			fmt.Printf("\n%s %s", styleConnector.Render(conn.Name()), status)
			if conn.MMWidth > 0 && conn.MMHeight > 0 {
				fmt.Printf(` %dx%dmm`, conn.MMWidth, conn.MMHeight)
			}
			fmt.Println()

			if conn.EncoderID != 0 {
				enc, err := dev.Encoder(conn.EncoderID)
				if err != nil {
					return err
				}
				fmt.Printf(`    encoder %d (%s)`, enc.ID, encoderTypeName(enc.Type))
				if enc.CRTCID != 0 {
					crtc, err := dev.CRTC(enc.CRTCID)
					if err != nil {
						return err
					}
					fmt.Printf(`, crtc %d`, crtc.ID)
					if crtc.ModeValid {
						fmt.Printf(` scanning out %s`, crtc.Mode.String())
					}
				}
				fmt.Println()
			}
			for i, mode := range conn.Modes {
				marker := ` `
				if i == 0 {
					marker = `*`
				}
				fmt.Printf("    %s %s\n", marker, mode.String())
			}
		}
		return nil
	}
}
