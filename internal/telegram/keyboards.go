package telegram

// Callback data values routed by the bot.
const (
	cbExchanges    = "exchanges"
	cbSettings     = "settings"
	cbProfile      = "profile"
	cbAccess       = "access"
	cbBackToMenu   = "back_to_menu"
	cbShowSettings = "show_settings"

	cbSetPumpPeriod   = "set_pump_period"
	cbSetPumpPercent  = "set_pump_percent"
	cbSetShortPeriod  = "set_short_period"
	cbSetShortPercent = "set_short_percent"
	cbSetDumpPeriod   = "set_dump_period"
	cbSetDumpPercent  = "set_dump_percent"
)

func mainMenuKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{
			{Text: "📊 Exchanges", CallbackData: cbExchanges},
			{Text: "⚙️ Settings", CallbackData: cbSettings},
		},
		{
			{Text: "👤 Profile", CallbackData: cbProfile},
			{Text: "💳 Access", CallbackData: cbAccess},
		},
	}}
}

func settingsKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{
			{Text: "🟢 Pump period", CallbackData: cbSetPumpPeriod},
			{Text: "➕ Pump %", CallbackData: cbSetPumpPercent},
		},
		{
			{Text: "🟡 Short period", CallbackData: cbSetShortPeriod},
			{Text: "➕ Short %", CallbackData: cbSetShortPercent},
		},
		{
			{Text: "🔴 Dump period", CallbackData: cbSetDumpPeriod},
			{Text: "➕ Dump %", CallbackData: cbSetDumpPercent},
		},
		{
			{Text: "👀 Show settings", CallbackData: cbShowSettings},
		},
		{
			{Text: "🔚 Back", CallbackData: cbBackToMenu},
		},
	}}
}
