package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign はHMAC-SHA256のhex digestを返す。
func Sign(raw string, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// 決済作成リクエストの署名対象文字列。
// キーの並びはMoMoの仕様で固定。並び替えると署名不一致になる。
func CreateRawSignature(accessKey, amount, extraData, ipnURL, orderID, orderInfo, partnerCode, redirectURL, requestID, requestType string) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		accessKey, amount, extraData, ipnURL, orderID, orderInfo, partnerCode, redirectURL, requestID, requestType,
	)
}

// IPN検証用の署名対象文字列。作成リクエストとはキーの並びが違う。
func IPNRawSignature(accessKey, amount, extraData, message, orderID, orderInfo, orderType, partnerCode, payType, requestID, responseTime, resultCode, transID string) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		accessKey, amount, extraData, message, orderID, orderInfo, orderType, partnerCode, payType, requestID, responseTime, resultCode, transID,
	)
}

// VerifyIPN は受信したIPNの署名を再計算して突き合わせる。
func VerifyIPN(msg IPNMessage, accessKey string, secretKey string) bool {
	raw := IPNRawSignature(
		accessKey,
		msg.Amount,
		msg.ExtraData,
		msg.Message,
		msg.OrderID,
		msg.OrderInfo,
		msg.OrderType,
		msg.PartnerCode,
		msg.PayType,
		msg.RequestID,
		msg.ResponseTime,
		msg.ResultCode,
		msg.TransID,
	)
	return msg.Signature == Sign(raw, secretKey)
}
