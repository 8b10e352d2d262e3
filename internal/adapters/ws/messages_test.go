package ws

import (
	"errors"
	"fmt"
	"testing"

	"gearlane-auction-engine/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

func TestParseClientMessage(t *testing.T) {
	lotID := uuid.New()
	raw := fmt.Sprintf(`{"type":"place_bid","lot_id":"%s","data":{"amount":150}}`, lotID)

	msg, err := ParseClientMessage([]byte(raw))

	check.Nil(t, err)
	check.Equal(t, MessageTypePlaceBid, msg.Type)
	check.Equal(t, lotID, *msg.LotID)
	check.Equal(t, 150.0, msg.Data["amount"].(float64))
}

func TestParseClientMessage_Errors(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{not json`))
	check.NotNil(t, err)

	_, err = ParseClientMessage([]byte(`{"data":{}}`))
	check.True(t, errors.Is(err, shared.ErrMessageTypeRequired))
}

func TestClientMessageValidate(t *testing.T) {
	lotID := uuid.New()
	auctionID := uuid.New()

	tests := []struct {
		name string
		msg  ClientMessage
		want error
	}{
		{
			name: "subscribe with lot id",
			msg:  ClientMessage{Type: MessageTypeSubscribe, LotID: &lotID},
			want: nil,
		},
		{
			name: "subscribe with auction id",
			msg:  ClientMessage{Type: MessageTypeSubscribe, AuctionID: &auctionID},
			want: nil,
		},
		{
			name: "subscribe without target",
			msg:  ClientMessage{Type: MessageTypeSubscribe},
			want: shared.ErrLotIDRequired,
		},
		{
			name: "place bid",
			msg:  ClientMessage{Type: MessageTypePlaceBid, LotID: &lotID, Data: map[string]interface{}{"amount": 150.0}},
			want: nil,
		},
		{
			name: "place bid without lot",
			msg:  ClientMessage{Type: MessageTypePlaceBid, Data: map[string]interface{}{"amount": 150.0}},
			want: shared.ErrLotIDRequired,
		},
		{
			name: "place bid with zero amount",
			msg:  ClientMessage{Type: MessageTypePlaceBid, LotID: &lotID, Data: map[string]interface{}{"amount": 0.0}},
			want: shared.ErrInvalidAmount,
		},
		{
			name: "proxy bid with valid ceiling",
			msg: ClientMessage{Type: MessageTypePlaceBid, LotID: &lotID, Data: map[string]interface{}{
				"amount": 150.0, "is_proxy": true, "proxy_max": 500.0,
			}},
			want: nil,
		},
		{
			name: "proxy bid with ceiling below amount",
			msg: ClientMessage{Type: MessageTypePlaceBid, LotID: &lotID, Data: map[string]interface{}{
				"amount": 150.0, "is_proxy": true, "proxy_max": 100.0,
			}},
			want: shared.ErrInvalidProxyMax,
		},
		{
			name: "pre bid",
			msg:  ClientMessage{Type: MessageTypePlacePreBid, LotID: &lotID, Data: map[string]interface{}{"amount": 150.0}},
			want: nil,
		},
		{
			name: "retract without bid id",
			msg:  ClientMessage{Type: MessageTypeRetractBid, Data: map[string]interface{}{}},
			want: shared.ErrBidIDRequired,
		},
		{
			name: "lot state without lot id",
			msg:  ClientMessage{Type: MessageTypeGetLotState},
			want: shared.ErrLotIDRequired,
		},
		{
			name: "ping",
			msg:  ClientMessage{Type: MessageTypePing},
			want: nil,
		},
		{
			name: "unknown type",
			msg:  ClientMessage{Type: MessageType("teleport")},
			want: shared.ErrUnknownMessageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.want == nil {
				check.Nil(t, err)
			} else {
				check.True(t, errors.Is(err, tt.want))
			}
		})
	}
}
