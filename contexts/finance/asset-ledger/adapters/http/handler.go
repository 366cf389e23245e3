package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/finance/asset-ledger/application"
	httptransport "agora/contexts/finance/asset-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) MintHandler(ctx context.Context, req httptransport.MintRequest) (httptransport.AccountResponse, error) {
	account, err := h.Service.Mint(ctx, req.Address, req.Amount)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{
		Address:   account.Address,
		Balance:   account.Balance,
		UpdatedAt: account.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) TransferHandler(
	ctx context.Context,
	caller string,
	req httptransport.TransferRequest,
) (httptransport.TransferResponse, error) {
	if err := h.Service.Transfer(ctx, caller, req.To, req.Amount); err != nil {
		return httptransport.TransferResponse{}, err
	}
	return httptransport.TransferResponse{
		From:   caller,
		To:     req.To,
		Amount: req.Amount,
	}, nil
}

func (h Handler) ApproveHandler(
	ctx context.Context,
	caller string,
	req httptransport.ApproveRequest,
) (httptransport.AllowanceResponse, error) {
	if err := h.Service.Approve(ctx, caller, req.Spender, req.Amount); err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		Owner:     caller,
		Spender:   req.Spender,
		Remaining: req.Amount,
	}, nil
}

func (h Handler) BalanceHandler(ctx context.Context, address string) (httptransport.BalanceResponse, error) {
	balance, err := h.Service.BalanceOf(ctx, address)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Address: address,
		Balance: balance,
	}, nil
}

func (h Handler) AllowanceHandler(ctx context.Context, owner string, spender string) (httptransport.AllowanceResponse, error) {
	remaining, err := h.Service.Allowance(ctx, owner, spender)
	if err != nil {
		return httptransport.AllowanceResponse{}, err
	}
	return httptransport.AllowanceResponse{
		Owner:     owner,
		Spender:   spender,
		Remaining: remaining,
	}, nil
}
