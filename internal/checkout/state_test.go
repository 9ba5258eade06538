package checkout

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Step(t *testing.T) {
	session := &Session{UserID: "u", SessionID: "s"}
	result := &Result{Status: PaymentDenied}

	tests := []struct {
		name  string
		state State
		want  Step
	}{
		{name: "empty", state: State{}, want: StepReview},
		{name: "creating session stays in review", state: State{CreatingSession: true}, want: StepReview},
		{name: "session", state: State{Session: session}, want: StepPayment},
		{name: "processing", state: State{Session: session, ProcessingPayment: true}, want: StepProcessing},
		{name: "result", state: State{Session: session, Result: result}, want: StepResult},
		{name: "result wins over session and processing", state: State{Session: session, Result: result, ProcessingPayment: true}, want: StepResult},
		{name: "result without session", state: State{Result: result}, want: StepResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Step())
		})
	}
}

func TestState_CloneDoesNotShareMemory(t *testing.T) {
	orig := State{
		Session:   &Session{SessionID: "s"},
		Result:    &Result{Status: PaymentApproved},
		Recording: &OrderRecording{Status: OrderRecordingRecorded, Order: &Order{ID: "o"}},
	}

	cp := orig.clone()
	cp.Session.SessionID = "changed"
	cp.Recording.Order.ID = "changed"

	assert.Equal(t, "s", orig.Session.SessionID)
	assert.Equal(t, "o", orig.Recording.Order.ID)
}

func TestFlowError_JSONHidesCause(t *testing.T) {
	err := newFlowError(KindPaymentProcessingFailed, errors.New("dial tcp 10.0.0.1:8080: refused"))

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"kind":"PaymentProcessingFailed","message":"Your payment could not be processed. Please try again."}`, string(data))
	assert.Contains(t, err.Error(), "refused")
}

type stubBackendErr struct{ msg string }

func (e stubBackendErr) Error() string          { return "backend: " + e.msg }
func (e stubBackendErr) BackendMessage() string { return e.msg }

func TestUserMessage(t *testing.T) {
	backend := stubBackendErr{msg: "Session expired"}

	assert.Equal(t, "Session expired", userMessage(KindSessionCreationFailed, backend))
	assert.Equal(t, "Session expired", userMessage(KindPaymentProcessingFailed, backend))
	assert.Equal(t, genericMessages[KindOrderRecordingFailed], userMessage(KindOrderRecordingFailed, backend))
	assert.Equal(t, genericMessages[KindSessionCreationFailed], userMessage(KindSessionCreationFailed, stubBackendErr{}))
}

func TestPaymentForm(t *testing.T) {
	valid := PaymentForm{CardNumber: "4111111111111111", ExpiryDate: "01/30", CVV: "999", NameOnCard: "N"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*PaymentForm)
	}{
		{name: "short card", mutate: func(f *PaymentForm) { f.CardNumber = "4111" }},
		{name: "letters in card", mutate: func(f *PaymentForm) { f.CardNumber = "4111abcd11111111" }},
		{name: "month 13", mutate: func(f *PaymentForm) { f.ExpiryDate = "13/30" }},
		{name: "no slash", mutate: func(f *PaymentForm) { f.ExpiryDate = "0130" }},
		{name: "cvv too long", mutate: func(f *PaymentForm) { f.CVV = "12345" }},
		{name: "no name", mutate: func(f *PaymentForm) { f.NameOnCard = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			require.ErrorIs(t, f.Validate(), ErrInvalidForm)
		})
	}

	t.Run("non-card method skips card checks", func(t *testing.T) {
		assert.NoError(t, PaymentForm{PaymentMethod: "invoice"}.Validate())
	})

	t.Run("merge keeps existing on empty", func(t *testing.T) {
		merged := valid.Merge(PaymentForm{City: " Oslo ", NameOnCard: ""})
		assert.Equal(t, "Oslo", merged.City)
		assert.Equal(t, "N", merged.NameOnCard)
	})

	t.Run("card number spaces are dropped", func(t *testing.T) {
		var f PaymentForm
		require.NoError(t, f.Set("card_number", " 4111 1111 1111 1111 "))
		assert.Equal(t, "4111111111111111", f.CardNumber)

		merged := PaymentForm{}.Merge(PaymentForm{CardNumber: "4111 1111 1111 1111", City: " Oslo "})
		assert.Equal(t, "4111111111111111", merged.CardNumber)
		assert.Equal(t, "Oslo", merged.City)
	})

	t.Run("masked", func(t *testing.T) {
		m := valid.Masked()
		assert.Equal(t, "************1111", m.CardNumber)
		assert.Empty(t, m.CVV)
	})
}
