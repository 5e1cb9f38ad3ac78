package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"agegroup/inference"
	"agegroup/survey"
)

const wsReadLimit = 64 << 10

// handleWSPredict answers each text frame holding a record with one result
// frame. A bad record gets an error frame; the connection stays open.
func (a *API) handleWSPredict(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	requestID := GetRequestID(r.Context())
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Warn("websocket closed", zap.String("request_id", requestID), zap.Error(err))
			}
			return
		}
		if err := conn.WriteJSON(a.predictFrame(payload)); err != nil {
			a.logger.Warn("websocket write failed", zap.String("request_id", requestID), zap.Error(err))
			return
		}
	}
}

func (a *API) predictFrame(payload []byte) interface{} {
	var rec survey.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return newErrorResponse(err)
	}
	res, err := inference.PredictRecord(a.model, rec)
	if err != nil {
		if !survey.IsUserError(err) {
			a.logger.Error("websocket prediction failed", zap.Error(err))
			return errorResponse{Error: "prediction failed"}
		}
		return newErrorResponse(err)
	}
	return newPredictResponse(res)
}
