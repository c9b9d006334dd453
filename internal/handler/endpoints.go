package handler

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"concurrent-static-server/internal/events"
	"concurrent-static-server/internal/logger"
	"concurrent-static-server/internal/protocol"
)

// Demo endpoint paths. They only match GET requests.
const (
	PathOK     = "/ok"
	PathBad    = "/bad"
	PathFail   = "/fail"
	PathAsync  = "/async"
	PathResult = "/result"
)

// Fixed response bodies.
const (
	BodyOK            = `{"status":200,"message":"Todo bien 👍"}`
	BodyBad           = `{"status":400,"error":"Solicitud incorrecta"}`
	BodyFail          = `{"status":500,"error":"Error interno del servidor"}`
	BodyAsyncAccepted = `{"status":202,"message":"Tarea en proceso..."}`
	BodyAsyncDone     = `{"status":200,"result":"Tarea asincrónica completada"}`
	BodyNoResults     = `{"error":"No hay resultados aún"}`
)

// AsyncResults are the entries recorded by every completed /async task, in order.
var AsyncResults = []string{
	"Archivo procesado: informe_ventas.pdf",
	"Archivo procesado: resumen_clientes.csv",
	"Archivo procesado: reporte_financiero.xlsx",
	"Archivo procesado: log_servidor.txt",
}

// demoEndpoint は /async 以外のデモエンドポイントを処理する
func (h *Handler) demoEndpoint(path, source string) (protocol.Response, bool) {
	switch path {
	case PathOK:
		logger.Info(source, "[200] /ok")
		return protocol.JSON(200, BodyOK), true
	case PathBad:
		logger.Warn(source, "[400] /bad")
		return protocol.JSON(400, BodyBad), true
	case PathFail:
		logger.Error(source, "[500] /fail")
		return protocol.JSON(500, BodyFail), true
	case PathResult:
		return h.serveResults(source), true
	default:
		return protocol.Response{}, false
	}
}

// serveResults はジョブストアのスナップショットをJSON配列で返す
func (h *Handler) serveResults(source string) protocol.Response {
	entries, ok := h.store.Snapshot()
	if !ok {
		logger.Warn(source, "[404] /result: no results yet")
		return protocol.JSON(404, BodyNoResults)
	}

	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		logger.Error(source, "[500] /result: %v", err)
		return protocol.HTML(500, "<h1>500</h1>")
	}

	logger.Info(source, "[200] /result (%d entries)", len(entries))
	return protocol.Response{Status: 200, ContentType: protocol.ContentTypeJSON, Body: body}
}

// serveAsync は202を返した後、遅延タスクを登録する
// 戻り値の handedOff が true の場合、conn の Close は遅延タスクが行う
func (h *Handler) serveAsync(conn net.Conn, source string) (handedOff bool, err error) {
	late, handedOff, err := duplicate(conn)
	if err != nil {
		logger.Error(source, "[500] /async: %v", err)
		_, _ = protocol.HTML(500, "<h1>500</h1>").WriteTo(conn)
		return false, fmt.Errorf("duplicate connection: %w", err)
	}

	if _, err := protocol.JSON(202, BodyAsyncAccepted).WriteTo(conn); err != nil {
		if !handedOff {
			_ = late.Close()
		}
		return false, fmt.Errorf("GET /async: %w", err)
	}
	logger.Info(source, "[202] /async scheduled")

	h.collector.AsyncScheduled()
	h.eventBus.Publish(events.NewAsyncScheduledEvent(source))
	h.executor.Schedule(h.config.AsyncDelay, func() {
		h.completeAsync(late, source)
	})
	return handedOff, nil
}

// completeAsync は結果を記録し、同じソケットに2つ目のレスポンスを書き込む
func (h *Handler) completeAsync(conn net.Conn, source string) {
	defer func() { _ = conn.Close() }()
	defer h.collector.AsyncDone()

	h.store.Record(AsyncResults...)
	h.collector.SetResults(h.store.Len())

	_ = conn.SetWriteDeadline(time.Now().Add(h.config.ReadTimeout))
	_, err := protocol.JSON(200, BodyAsyncDone).WriteTo(conn)
	if err != nil {
		logger.Warn(source, "async completion not delivered: %v", err)
	} else {
		logger.Info(source, "async task completed, results recorded")
	}
	h.eventBus.Publish(events.NewAsyncCompletedEvent(source, err))
}
