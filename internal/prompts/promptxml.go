package prompts

import (
	"encoding/xml"
	"fmt"
)

type blockFormats struct {
	XMLName xml.Name      `xml:"blockFormats"` //nolint:tagliatelle // XML specific thing.
	Formats []blockFormat `xml:"format"`       //nolint:tagliatelle // XML specific thing.
}

// <format lang="..." title="..."><![CDATA[text]]></format>.
type blockFormat struct {
	Lang  string `xml:"lang,attr"`
	Title string `xml:"title,attr,omitempty"`
	Body  string `xml:",cdata"` //nolint:tagliatelle // Cannot specify name along with cdata.
}

// XML renders templates as a <blockFormats> document, keeping their order.
func XML(ts []Template) (string, error) {
	out := blockFormats{Formats: make([]blockFormat, 0, len(ts))}
	for _, t := range ts {
		out.Formats = append(out.Formats, blockFormat{
			Lang:  string(t.Key),
			Title: t.Title,
			Body:  t.Text,
		})
	}
	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xml encode: %w", err)
	}
	return string(b), nil
}
