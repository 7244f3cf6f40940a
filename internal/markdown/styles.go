package markdown

import "fmt"

const bodyFont = "'Proxima Nova', sans-serif"

const (
	textColor    = "#213343"
	codeBackdrop = "#dfdfe2"
)

// headingSizes and headingMargins are indexed by level. Level 6 keeps a size
// close to level 5 but gets the larger margin.
var (
	headingSizes   = [7]int{0, 35, 28, 23, 20, 18, 16}
	headingMargins = [7]string{"", "20px 0", "20px 0", "20px 0", "20px 0", "20px 0", "24px 0"}
)

func headingStyle(level int) Style {
	if level < 1 || level > 6 {
		return nil
	}
	return Style{
		{"font-weight", "bold"},
		{"font-size", fmt.Sprintf("%dpx", headingSizes[level])},
		{"margin", headingMargins[level]},
		{"font-family", bodyFont},
	}
}

var (
	unorderedListStyle = Style{
		{"margin-left", "10px"},
		{"line-height", "1.75"},
		{"font-family", bodyFont},
		{"font-size", "1.1rem"},
		{"color", textColor},
	}
	orderedListStyle = Style{
		{"margin-left", "10px"},
		{"font-family", bodyFont},
		{"line-height", "1.70"},
		{"font-size", "1.1rem"},
		{"color", textColor},
	}
	listItemStyle = Style{
		{"margin-left", "10px"},
		{"line-height", "1.5"},
		{"tab-size", "4"},
		{"font-size", "1.1rem"},
		{"color", textColor},
	}
	paragraphStyle = Style{
		{"font-family", bodyFont},
		{"line-height", "1.70"},
		{"font-size", "1.1rem"},
		{"color", textColor},
	}
	inlineCodeStyle = Style{
		{"background-color", codeBackdrop},
		{"padding", "2px 4px"},
		{"border-radius", "4px"},
		{"font-style", "italic"},
		{"font-weight", "lighter"},
		{"font-family", bodyFont},
		{"font-size", "1.05rem"},
	}
	imageStyle = Style{
		{"width", "100%"},
		{"object-fit", "cover"},
	}
	copyButtonStyle = Style{
		{"position", "absolute"},
		{"right", "10px"},
		{"top", "10px"},
		{"cursor", "pointer"},
		{"padding", "5px"},
		{"border-radius", "5px"},
		{"background-color", codeBackdrop},
	}
)

const (
	listItemClass  = "mb-2 text-base leading-relaxed"
	paragraphClass = "mb-6"
	imageClass     = "my-4 mx-auto"
	articleClass   = "prose max-w-none leading-normal prose-headings:font-medium"
)
