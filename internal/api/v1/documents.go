package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/notify"
	"github.com/gosuda/cabinet/internal/server/middleware"
)

type DocumentNumberInput struct {
	Number string `path:"number" pattern:"^(FAC|DEV)-[0-9]{4}-[0-9]+$" doc:"Document number, e.g. FAC-2026-0001"`
}

type DocumentOutput struct {
	Body *domain.Document
}

type DocumentHTMLOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type SendDocumentOutput struct {
	Body struct {
		Number    string `json:"number"`
		To        string `json:"to"`
		MessageID string `json:"messageId"`
	}
}

func RegisterDocumentRoutes(api huma.API, svc DocumentService, render Renderer, sender DocumentSender) {
	huma.Register(api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/documents/{number}",
		Summary:     "Get an invoice or quote snapshot",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *DocumentNumberInput) (*DocumentOutput, error) {
		doc, err := svc.Document(ctx, middleware.TenantFromContext(ctx), input.Number)
		if err != nil {
			return nil, problem(err, "failed to read document")
		}
		return &DocumentOutput{Body: doc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "render-document",
		Method:      http.MethodGet,
		Path:        "/documents/{number}/html",
		Summary:     "Render an invoice or quote as HTML",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *DocumentNumberInput) (*DocumentHTMLOutput, error) {
		doc, err := svc.Document(ctx, middleware.TenantFromContext(ctx), input.Number)
		if err != nil {
			return nil, problem(err, "failed to read document")
		}
		page, err := render(doc)
		if err != nil {
			return nil, problem(err, "failed to render document")
		}
		return &DocumentHTMLOutput{ContentType: "text/html; charset=utf-8", Body: page}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "send-document",
		Method:      http.MethodPost,
		Path:        "/documents/{number}/send",
		Summary:     "Email an invoice or quote to the client",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *DocumentNumberInput) (*SendDocumentOutput, error) {
		t := middleware.TenantFromContext(ctx)
		if t.IsDemo() {
			return nil, huma.Error403Forbidden("sign in to send documents")
		}
		doc, err := svc.Document(ctx, t, input.Number)
		if err != nil {
			return nil, problem(err, "failed to read document")
		}
		id, err := sender.SendDocument(ctx, doc)
		if err != nil {
			if errors.Is(err, notify.ErrNoRecipient) {
				return nil, huma.Error400BadRequest("client has no email address")
			}
			return nil, huma.Error502BadGateway("failed to send document", err)
		}
		out := &SendDocumentOutput{}
		out.Body.Number = doc.Number
		out.Body.To = doc.Client.Email
		out.Body.MessageID = id
		return out, nil
	})
}
