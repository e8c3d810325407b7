package httphandler

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/openmarket-network/market-indexer/common/errs"
	"github.com/openmarket-network/market-indexer/modules/marketplace/entity"
)

type createListingRequest struct {
	Caller   string `json:"caller"`
	Contract string `json:"contract"`
	TokenID  string `json:"tokenId"`
	Price    string `json:"price"`
	Amount   uint64 `json:"amount"`
	Standard string `json:"standard"`
}

func (r createListingRequest) Validate() error {
	var errList []error
	if _, ok := parseAddress(r.Caller); !ok {
		errList = append(errList, errors.Errorf("'caller' %q is not a valid address", r.Caller))
	}
	if _, ok := parseAddress(r.Contract); !ok {
		errList = append(errList, errors.Errorf("'contract' %q is not a valid address", r.Contract))
	}
	if _, ok := parseTokenID(r.TokenID); !ok {
		errList = append(errList, errors.Errorf("'tokenId' %q is not a valid token id", r.TokenID))
	}
	if _, ok := new(big.Int).SetString(r.Price, 10); !ok {
		errList = append(errList, errors.Errorf("'price' %q is not a valid integer", r.Price))
	}
	if _, ok := parseStandard(r.Standard); !ok {
		errList = append(errList, errors.Errorf("'standard' %q must be erc721 or erc1155", r.Standard))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type createListingResponse = HttpResponse[eventResult]

func (h *HttpHandler) CreateListing(ctx *fiber.Ctx) (err error) {
	var req createListingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	caller, _ := parseAddress(req.Caller)
	contract, _ := parseAddress(req.Contract)
	tokenID, _ := parseTokenID(req.TokenID)
	price, _ := new(big.Int).SetString(req.Price, 10)
	standard, _ := parseStandard(req.Standard)
	amount := req.Amount
	if standard == entity.TokenStandardUnique {
		amount = 1
	}

	event, err := h.usecase.ListItem(ctx.UserContext(), caller, contract, tokenID, amount, price, standard)
	if err != nil {
		return errors.Wrap(mapLedgerError(err), "error during ListItem")
	}

	result := mapEventToResult(event)
	resp := createListingResponse{Result: &result}
	return errors.WithStack(ctx.JSON(resp))
}
