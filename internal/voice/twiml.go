package voice

import (
	"encoding/xml"
	"net/http"
)

const (
	sayVoice         = "Polly.Joanna"
	gatherTimeoutSec = 8
)

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr"`
	Text    string   `xml:",chardata"`
}

type gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Say           say
}

type hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

func newSay(text string) say {
	return say{Voice: sayVoice, Text: text}
}

// gatherDoc speaks prompt while listening for speech posted to action. If the
// caller says nothing Twilio falls through to the goodbye.
func gatherDoc(prompt, action, goodbye string) twimlResponse {
	return twimlResponse{Verbs: []any{
		gather{
			Input:         "speech",
			Timeout:       gatherTimeoutSec,
			SpeechTimeout: "auto",
			Action:        action,
			Method:        http.MethodPost,
			Say:           newSay(prompt),
		},
		newSay(goodbye),
	}}
}

// hangupDoc speaks text and ends the call.
func hangupDoc(text string) twimlResponse {
	return twimlResponse{Verbs: []any{newSay(text), hangup{}}}
}

func renderTwiML(doc twimlResponse) ([]byte, error) {
	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
