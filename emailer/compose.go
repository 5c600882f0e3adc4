package emailer

import (
	"fmt"
	"html"

	"sermonmail/mail"
	"sermonmail/youtube"
)

// Subject and body follow the bilingual Telugu/English wording of the
// original daily sermon mails.
const sermonSubject = "మీ రోజువారీ తెలుగు బైబిల్ ప్రసంగం (Your Daily Telugu Bible Sermon)"

const sermonBodyTemplate = `నమస్కారం (Greetings),

ఈ రోజు మీకోసం ఎంచుకోబడిన ప్రసంగం ఇక్కడ ఉంది (Here is the sermon selected for you today):

ప్రసంగం పేరు (Sermon Title): %s
ప్రసంగకర్త (Speaker): %s
వినడానికి/చూడటానికి లింక్ (Link to listen/watch): %s

దేవుడు మిమ్మును దీవించును గాక (May God bless you),
మీ తెలుగు ప్రసంగాల సహాయకుడు (Your Telugu Sermons Assistant)
`

const sermonHTMLTemplate = `<p>నమస్కారం (Greetings),</p>
<p>ఈ రోజు మీకోసం ఎంచుకోబడిన ప్రసంగం ఇక్కడ ఉంది (Here is the sermon selected for you today):</p>
<p>
ప్రసంగం పేరు (Sermon Title): <strong>%s</strong><br>
ప్రసంగకర్త (Speaker): %s<br>
వినడానికి/చూడటానికి లింక్ (Link): <a href="%s">%s</a>
</p>
<p>దేవుడు మిమ్మును దీవించును గాక (May God bless you),<br>
మీ తెలుగు ప్రసంగాల సహాయకుడు (Your Telugu Sermons Assistant)</p>
`

// composeMessage builds the delivery email for the selected sermon.
func composeMessage(v youtube.VideoInfo) mail.Message {
	url := v.VideoURL()
	return mail.Message{
		Subject:  sermonSubject,
		TextBody: fmt.Sprintf(sermonBodyTemplate, v.Title, v.ChannelName, url),
		HTMLBody: fmt.Sprintf(sermonHTMLTemplate,
			html.EscapeString(v.Title), html.EscapeString(v.ChannelName), url, url),
	}
}
