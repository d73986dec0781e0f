package commands

import (
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/leaddesk/leaddesk"
	"github.com/ellavondegurechaff/leaddesk/leaddesk/utils"
)

var Report = discord.SlashCommandCreate{
	Name:        "report",
	Description: "Send the daily lead report now",
}

// ReportHandler runs the daily summary on demand, staff only. The counters
// reset exactly as they would at the scheduled run.
func ReportHandler(b *leaddesk.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !isStaff(b, e) {
			return utils.EH.CreateErrorEmbed(e, "Only ticket staff can trigger the report.")
		}

		if b.Guild.Get().ReportChannelID == 0 {
			return utils.EH.CreateErrorEmbed(e, "No report channel is configured. Run setup first.")
		}

		if err := b.Reporter.RunOnce(); err != nil {
			slog.Error("Manual report run failed", slog.Any("error", err))
			return utils.EH.CreateErrorEmbed(e, "Failed to send the report.")
		}

		return utils.EH.CreateSuccessEmbed(e, "Report sent. Daily counters were reset.")
	}
}
