package ipc

import "fmt"

// DaemonError is a protocol-level error response decoded into a Go error,
// carrying the daemon's numeric code.
type DaemonError struct {
	Message string
	Code    int
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("daemon error (code %d): %s", e.Code, e.Message)
}

// roundTrip performs one request/response exchange on a fresh connection,
// matching the server's one-exchange-per-connection behavior, and converts
// an error response into a *DaemonError.
func (c *Client) roundTrip(msg Message) (Message, error) {
	response, err := Request(c.path, msg)
	if err != nil {
		return Message{}, err
	}
	if response.Type == MessageError {
		payload, err := response.ErrorPayload()
		if err != nil {
			return Message{}, err
		}
		return Message{}, &DaemonError{Message: payload.Message, Code: payload.Code}
	}
	return response, nil
}

// Start requests the daemon to start processing.
func (c *Client) Start() (StatusPayload, error) {
	response, err := c.roundTrip(NewMessage(MessageStart))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}

// Stop requests the daemon to shut down.
func (c *Client) Stop() (StatusPayload, error) {
	response, err := c.roundTrip(NewMessage(MessageStop))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}

// Pause requests the daemon to pause processing.
func (c *Client) Pause() (StatusPayload, error) {
	response, err := c.roundTrip(NewMessage(MessagePause))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}

// Resume requests the daemon to resume from pause.
func (c *Client) Resume() (StatusPayload, error) {
	response, err := c.roundTrip(NewMessage(MessageResume))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}

// Status retrieves the daemon status.
func (c *Client) Status() (StatusPayload, error) {
	response, err := c.roundTrip(NewMessage(MessageStatus))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}

// ListDevices retrieves the audio input devices the daemon can record from.
func (c *Client) ListDevices() ([]DeviceInfo, error) {
	response, err := c.roundTrip(NewMessage(MessageListAudioDevices))
	if err != nil {
		return nil, err
	}
	payload, err := response.DevicesPayload()
	if err != nil {
		return nil, err
	}
	return payload.Devices, nil
}

// StartRecording asks the daemon to begin capturing audio.
func (c *Client) StartRecording(req StartRecordingRequest) (StatusPayload, error) {
	response, err := c.roundTrip(NewStartRecordingMessage(req))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}

// StopRecording asks the daemon to end the current capture.
func (c *Client) StopRecording() (StatusPayload, error) {
	response, err := c.roundTrip(NewMessage(MessageStopRecording))
	if err != nil {
		return StatusPayload{}, err
	}
	return response.StatusPayload()
}
