package main

import (
	"github.com/hkunkun/hkun-links/pkg/core/services"
	"github.com/hkunkun/hkun-links/pkg/ports"
)

type cliServices struct {
	categories ports.CategoryService
	links      ports.LinkService
	transfer   ports.TransferService
}

func newCLIServices(repo ports.Repository) *cliServices {
	return &cliServices{
		categories: services.NewCategoryService(repo, repo),
		links:      services.NewLinkService(repo, repo),
		transfer:   services.NewTransferService(repo),
	}
}
