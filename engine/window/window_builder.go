package window

// WindowBuilderOption is a function that configures a window during
// construction.
type WindowBuilderOption func(*glfwWindow)

// WithTitle is an option builder that sets the window title.
//
// Parameters:
//   - title: the title bar text
//
// Returns:
//   - WindowBuilderOption: a function that applies the title option to a glfwWindow
func WithTitle(title string) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.title = title
	}
}

// WithSize is an option builder that sets the requested window size. The
// actual framebuffer size may differ on high-DPI displays.
//
// Parameters:
//   - width: the requested width in pixels
//   - height: the requested height in pixels
//
// Returns:
//   - WindowBuilderOption: a function that applies the size option to a glfwWindow
func WithSize(width, height int) WindowBuilderOption {
	return func(w *glfwWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}
