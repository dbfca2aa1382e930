package gateway

// Relay forwards an opaque signaling payload to every live connection of the
// recipient, tagged with the sender identity. The relay keeps no session
// state: device selection/deduplication is the application layer's problem.
// Zero recipient connections means zero deliveries and no error to the
// sender.
func (s *Server) Relay(senderIdentity, recipientIdentity string, payload any) int {
	return s.SendToUser(recipientIdentity, EvtSignal, SignalEnvelope{
		From:    senderIdentity,
		Payload: payload,
	})
}
