package notify

import "github.com/rs/zerolog"

// EmailSender is a fire-and-forget notification capability. Delivery is
// simulated by logging the message; there is no confirmation channel.
type EmailSender struct {
	Log zerolog.Logger
}

func (s *EmailSender) Send(email, subject, body string) {
	s.Log.Info().
		Str("to", email).
		Str("subject", subject).
		Str("body", body).
		Msg("email sent")
}
