package server

import (
	"github.com/eternalApril/moonresp/internal/resp"
)

type request struct {
	args []resp.Value
}

type command interface {
	execute(ctx *request) resp.Value
}

type commandFunc func(ctx *request) resp.Value

func (c commandFunc) execute(ctx *request) resp.Value {
	return c(ctx)
}

func ping(ctx *request) resp.Value {
	switch len(ctx.args) {
	case 0:
		return resp.MakeSimpleString("PONG")
	case 1:
		return ctx.args[0]
	}
	return resp.MakeErrorWrongNumberOfArguments("ping")
}

func echo(ctx *request) resp.Value {
	if len(ctx.args) != 1 {
		return resp.MakeErrorWrongNumberOfArguments("echo")
	}
	return ctx.args[0]
}

func quit(_ *request) resp.Value {
	return resp.MakeSimpleString("OK")
}
