// Package messages defines the typed requests the UI sends to the background process
// and the events the background process broadcasts back to every open UI surface.
package messages

import (
	"encoding/json"

	"github.com/althash-leandro/altmask/internal/shared"
)

type Type string

// Requests.
const (
	ChangeNetwork         Type = "CHANGE_NETWORK"
	GetNetworks           Type = "GET_NETWORKS"
	GetNetworkIndex       Type = "GET_NETWORK_INDEX"
	GetNetworkExplorerURL Type = "GET_NETWORK_EXPLORER_URL"
	IsMainNet             Type = "IS_MAINNET"
	GetQRCTokenList       Type = "GET_QRC_TOKEN_LIST"
	SendQRCTokens         Type = "SEND_QRC_TOKENS"
	AddToken              Type = "ADD_TOKEN"
	GetQRCTokenDetails    Type = "GET_QRC_TOKEN_DETAILS"
	RemoveToken           Type = "REMOVE_TOKEN"
	GetAccounts           Type = "GET_ACCOUNTS"
	AccountLogin          Type = "ACCOUNT_LOGIN"
	Logout                Type = "LOGOUT"
	GetLoggedInAccount    Type = "GET_LOGGED_IN_ACCOUNT"
)

// Broadcasts.
const (
	ChangeNetworkSuccess  Type = "CHANGE_NETWORK_SUCCESS"
	QRCTokensReturn       Type = "QRC_TOKENS_RETURN"
	QRCTokenDetailsReturn Type = "QRC_TOKEN_DETAILS_RETURN"
	SendTokensSuccess     Type = "SEND_TOKENS_SUCCESS"
	SendTokensFailure     Type = "SEND_TOKENS_FAILURE"
	AddTokenFailure       Type = "ADD_TOKEN_FAILURE"
	AccountLoginSuccess   Type = "ACCOUNT_LOGIN_SUCCESS"
	AccountLoginFailure   Type = "ACCOUNT_LOGIN_FAILURE"
	LogoutSuccess         Type = "LOGOUT_SUCCESS"
)

// ExpectsResponse reports whether the sender of t waits for a direct reply.
// Every other request is answered, if at all, by a broadcast.
func (t Type) ExpectsResponse() bool {
	switch t {
	case GetNetworks, GetNetworkIndex, GetNetworkExplorerURL, IsMainNet,
		GetQRCTokenList, GetAccounts, GetLoggedInAccount:
		return true
	default:
		return false
	}
}

// Request is the union of every request payload; only the fields of Type are read.
type Request struct {
	Type Type `json:"type"`

	NetworkIndex *int `json:"networkIndex,omitempty"`

	ContractAddress string `json:"contractAddress,omitempty"`
	Name            string `json:"name,omitempty"`
	Symbol          string `json:"symbol,omitempty"`
	Decimals        uint8  `json:"decimals,omitempty"`

	ReceiverAddress string        `json:"receiverAddress,omitempty"`
	Amount          json.Number   `json:"amount,omitempty"`
	Token           *shared.Token `json:"token,omitempty"`

	AccountName string `json:"accountName,omitempty"`
}

type Event struct {
	Type         Type            `json:"type"`
	NetworkIndex *int            `json:"networkIndex,omitempty"`
	Tokens       []shared.Token  `json:"tokens"`
	IsValid      *bool           `json:"isValid,omitempty"`
	Token        *shared.Token   `json:"token,omitempty"`
	Account      *shared.Account `json:"account,omitempty"`
	TxID         string          `json:"txid,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Broadcaster pushes an event to every listener.
type Broadcaster interface {
	Publish(Event)
}

func NetworkChanged(index int) Event {
	return Event{Type: ChangeNetworkSuccess, NetworkIndex: &index}
}

// TokensReturned copies tokens so later in-place balance updates do not leak into a
// published event.
func TokensReturned(tokens []shared.Token) Event {
	return Event{Type: QRCTokensReturn, Tokens: shared.CloneTokens(tokens)}
}

func TokenDetails(valid bool, token *shared.Token) Event {
	return Event{Type: QRCTokenDetailsReturn, IsValid: &valid, Token: token}
}

func SendSucceeded(txid string) Event {
	return Event{Type: SendTokensSuccess, TxID: txid}
}

func SendFailed(err error) Event {
	return Event{Type: SendTokensFailure, Error: err.Error()}
}

func AddTokenFailed(err error) Event {
	return Event{Type: AddTokenFailure, Error: err.Error()}
}

func LoginSucceeded(account shared.Account) Event {
	return Event{Type: AccountLoginSuccess, Account: &account}
}

func LoginFailed(err error) Event {
	return Event{Type: AccountLoginFailure, Error: err.Error()}
}

func LoggedOut() Event {
	return Event{Type: LogoutSuccess}
}
