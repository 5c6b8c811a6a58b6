package radioapp

import "fyne.io/fyne/v2/theme"

// Icons of the window and transport controls. They resolve through the
// current theme so light and dark variants follow the user's settings.
var (
	appIcon         = theme.MediaMusicIcon
	previewPrevIcon = theme.NavigateBackIcon
	playPrevIcon    = theme.MediaSkipPreviousIcon
	previewNextIcon = theme.NavigateNextIcon
	playNextIcon    = theme.MediaSkipNextIcon
)
