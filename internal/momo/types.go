package momo

import (
	"encoding/json"
	"fmt"
)

// 決済作成リクエスト（署名済みで送る）
type CreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	PartnerName string `json:"partnerName"`
	StoreID     string `json:"storeId"`
	RequestID   string `json:"requestId"`
	Amount      string `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

type CreateResponse struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
}

// IPN（サーバー間通知）。金額含め全項目が署名対象。
type IPNMessage struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       string `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      string `json:"transId"`
	ResultCode   string `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime string `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// MoMoはamount/transId/resultCode/responseTimeをJSON数値で送ってくる
// （環境によっては文字列のこともある）。どちらで届いても、署名対象と
// 同じ10進文字列に正規化して受ける。
func (m *IPNMessage) UnmarshalJSON(data []byte) error {
	type wire struct {
		PartnerCode  string          `json:"partnerCode"`
		OrderID      string          `json:"orderId"`
		RequestID    string          `json:"requestId"`
		Amount       json.RawMessage `json:"amount"`
		OrderInfo    string          `json:"orderInfo"`
		OrderType    string          `json:"orderType"`
		TransID      json.RawMessage `json:"transId"`
		ResultCode   json.RawMessage `json:"resultCode"`
		Message      string          `json:"message"`
		PayType      string          `json:"payType"`
		ResponseTime json.RawMessage `json:"responseTime"`
		ExtraData    string          `json:"extraData"`
		Signature    string          `json:"signature"`
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	amount, err := numberOrString(w.Amount)
	if err != nil {
		return err
	}
	transID, err := numberOrString(w.TransID)
	if err != nil {
		return err
	}
	resultCode, err := numberOrString(w.ResultCode)
	if err != nil {
		return err
	}
	responseTime, err := numberOrString(w.ResponseTime)
	if err != nil {
		return err
	}

	*m = IPNMessage{
		PartnerCode:  w.PartnerCode,
		OrderID:      w.OrderID,
		RequestID:    w.RequestID,
		Amount:       amount,
		OrderInfo:    w.OrderInfo,
		OrderType:    w.OrderType,
		TransID:      transID,
		ResultCode:   resultCode,
		Message:      w.Message,
		PayType:      w.PayType,
		ResponseTime: responseTime,
		ExtraData:    w.ExtraData,
		Signature:    w.Signature,
	}
	return nil
}

func numberOrString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	// json.Numberなら桁落ちなしで元の10進表現が取れる
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	return "", fmt.Errorf("momo: field is neither number nor string: %s", raw)
}

// 決済成功を表すresultCode
const ResultCodeSuccess = "0"
