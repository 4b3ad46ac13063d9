package model

import (
	"encoding/json"
	"fmt"
)

// DecodeEvent unmarshals a stored payload of the given kind back into its
// concrete event type.
func DecodeEvent(kind EventKind, data []byte) (Event, error) {
	var (
		event Event
		err   error
	)
	switch kind {
	case EventRegistration:
		var e RegistrationEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventSaleInitiated:
		var e SaleInitiatedEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventOwnershipTransfer:
		var e OwnershipTransferEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventSaleRejected:
		var e SaleRejectedEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventDocumentUpload:
		var e DocumentUploadEvent
		err = json.Unmarshal(data, &e)
		event = e
	case EventDocumentVerified:
		var e DocumentVerifiedEvent
		err = json.Unmarshal(data, &e)
		event = e
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", kind, err)
	}
	return event, nil
}
