package staticsvr

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var separator = strings.Repeat("=", 60)

// WriteBanner prints the startup banner: the served directory and the URL
// to open. Call it after Listen so URL shows the bound port.
func (s *Server) WriteBanner(w io.Writer) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	fmt.Fprintln(w, separator)
	bold.Fprintln(w, "ROS Bag Map Generator server started")
	fmt.Fprintf(w, "Directory: %v\n", s.Dir())
	fmt.Fprintf(w, "URL: %v\n", cyan.Sprint(s.URL()))
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open the URL above in your browser.")
	fmt.Fprintln(w, "Press Ctrl+C to stop.")
	fmt.Fprintln(w)
}

// WriteFarewell prints the line shown after an interrupt
func WriteFarewell(w io.Writer) {
	fmt.Fprintln(w)
	color.New(color.FgGreen).Fprintln(w, "Server stopped.")
}
