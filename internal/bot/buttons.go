package bot

import "gopkg.in/telebot.v4"

var (
	// inline buttons of the page message.
	btnPagePrev = telebot.InlineButton{Unique: "page_prev"}
	btnPageNext = telebot.InlineButton{Unique: "page_next"}

	// inline buttons of the import preview.
	btnImportConfirm = telebot.InlineButton{Unique: "import_confirm"}
	btnImportCancel  = telebot.InlineButton{Unique: "import_cancel"}

	// every notice action shares one route, the token travels in the callback data.
	btnNoticeAction = telebot.InlineButton{Unique: actionUnique}
)
