package services

import "errors"

// Error kinds returned (wrapped) by every service. Handlers map them to HTTP
// status codes.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
)

// Error carries a client-facing message alongside one of the kinds above.
// Error() returns the message, so it can be written to the response as is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Messages shared between services and handlers.
const (
	MsgNameAndPriceRequired = "Nome e preço são obrigatórios"
	MsgProductNotFound      = "Produto não encontrado"
	MsgAllFieldsRequired    = "Todos os campos são obrigatórios"
	MsgEmailTaken           = "Email já cadastrado"
	MsgInvalidCredentials   = "Credenciais inválidas"
	MsgEmailPasswordNeeded  = "Email e senha são obrigatórios"
	MsgInvalidToken         = "Token inválido ou expirado"
	MsgCaptchaFailed        = "Falha na verificação do reCAPTCHA"
	MsgEmailNotFound        = "Email não encontrado"
	MsgWishlistDuplicate    = "Produto já está na lista de desejos"
	MsgWishlistNotFound     = "Item não encontrado na lista de desejos"
	MsgEmailRequired        = "Email é obrigatório"
	MsgAdminOnly            = "Acesso restrito a administradores"
	MsgCartItemNotFound     = "Produto não está no carrinho"
	MsgInvalidQuantity      = "Quantidade inválida"
	MsgProductIDRequired    = "produto_id é obrigatório"
)
