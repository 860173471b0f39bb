package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"caixa/backend/internal/money"
)

// Channel identifies one inbound payment method of a shift.
type Channel string

const (
	ChannelCash        Channel = "cash"
	ChannelCard        Channel = "card"
	ChannelCardLink    Channel = "card_link"
	ChannelBoleto      Channel = "boleto"
	ChannelPixTerminal Channel = "pix_terminal"
	ChannelPixAccount  Channel = "pix_account"
	ChannelStoreCredit Channel = "store_credit"
	ChannelGiftCard    Channel = "gift_card"
	ChannelCashback    Channel = "cashback"
)

// Channels lists every scalar channel in display order.
var Channels = []Channel{
	ChannelCash,
	ChannelCard,
	ChannelCardLink,
	ChannelBoleto,
	ChannelPixTerminal,
	ChannelPixAccount,
	ChannelStoreCredit,
	ChannelGiftCard,
	ChannelCashback,
}

// SplittableChannels must carry a per-client breakdown matching their total.
var SplittableChannels = []Channel{
	ChannelCardLink,
	ChannelPixAccount,
	ChannelBoleto,
	ChannelStoreCredit,
	ChannelGiftCard,
	ChannelCashback,
}

func (c Channel) Valid() bool {
	for _, ch := range Channels {
		if ch == c {
			return true
		}
	}
	return false
}

func (c Channel) Splittable() bool {
	for _, ch := range SplittableChannels {
		if ch == c {
			return true
		}
	}
	return false
}

// Label is the operator-facing name of the channel.
func (c Channel) Label() string {
	switch c {
	case ChannelCash:
		return "Dinheiro"
	case ChannelCard:
		return "Cartão"
	case ChannelCardLink:
		return "Link de cartão"
	case ChannelBoleto:
		return "Boleto"
	case ChannelPixTerminal:
		return "Pix maquininha"
	case ChannelPixAccount:
		return "Pix conta"
	case ChannelStoreCredit:
		return "Crediário"
	case ChannelGiftCard:
		return "Vale-presente"
	case ChannelCashback:
		return "Cashback"
	default:
		return string(c)
	}
}

// Split attributes part of a channel total to one client or installment plan.
type Split struct {
	ClientName   string       `json:"client_name"`
	Amount       money.Amount `json:"amount"`
	Installments int          `json:"installments,omitempty"`
}

type ChannelEntry struct {
	DeclaredTotal money.Amount `json:"declared_total"`
	SubEntries    []Split      `json:"sub_entries"`
}

type Check struct {
	Bank        string       `json:"bank"`
	Branch      string       `json:"branch"`
	CheckNumber string       `json:"check_number"`
	ClientName  string       `json:"client_name"`
	Amount      money.Amount `json:"amount"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

type Tax struct {
	Label  string       `json:"label"`
	Amount money.Amount `json:"amount"`
}

// LedgerItem is a free-text line of the Outros or Brindes lists.
type LedgerItem struct {
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
}

// Entries is the inbound side of a shift.
//
// MiscIncomeTotal and FreeGiftsTotal mirror the sums of MiscIncome and
// FreeGifts for readers of the older scalar fields.
type Entries struct {
	StartingFloat   money.Amount `json:"starting_float"`
	Cash            ChannelEntry `json:"cash"`
	Card            ChannelEntry `json:"card"`
	CardLink        ChannelEntry `json:"card_link"`
	Boleto          ChannelEntry `json:"boleto"`
	PixTerminal     ChannelEntry `json:"pix_terminal"`
	PixAccount      ChannelEntry `json:"pix_account"`
	StoreCredit     ChannelEntry `json:"store_credit"`
	GiftCard        ChannelEntry `json:"gift_card"`
	Cashback        ChannelEntry `json:"cashback"`
	Checks          []Check      `json:"checks"`
	Taxes           []Tax        `json:"taxes"`
	MiscIncomeTotal money.Amount `json:"misc_income_total"`
	MiscIncome      []LedgerItem `json:"misc_income"`
	FreeGiftsTotal  money.Amount `json:"free_gifts_total"`
	FreeGifts       []LedgerItem `json:"free_gifts"`
}

// Channel returns the entry stored for ch. Unknown channels yield a zero entry.
func (e Entries) Channel(ch Channel) ChannelEntry {
	if p := e.channelRef(ch); p != nil {
		return *p
	}
	return ChannelEntry{}
}

// WithChannel returns a copy of e with ch replaced by entry.
func (e Entries) WithChannel(ch Channel, entry ChannelEntry) Entries {
	if p := e.channelRef(ch); p != nil {
		*p = entry
	}
	return e
}

func (e *Entries) channelRef(ch Channel) *ChannelEntry {
	switch ch {
	case ChannelCash:
		return &e.Cash
	case ChannelCard:
		return &e.Card
	case ChannelCardLink:
		return &e.CardLink
	case ChannelBoleto:
		return &e.Boleto
	case ChannelPixTerminal:
		return &e.PixTerminal
	case ChannelPixAccount:
		return &e.PixAccount
	case ChannelStoreCredit:
		return &e.StoreCredit
	case ChannelGiftCard:
		return &e.GiftCard
	case ChannelCashback:
		return &e.Cashback
	default:
		return nil
	}
}

// ExitRecord is an itemized withdrawal ("saída retirada").
type ExitRecord struct {
	Description          string       `json:"description"`
	Amount               money.Amount `json:"amount"`
	IncludedInShiftTotal bool         `json:"included_in_shift_total"`
}

type Devolution struct {
	CustomerName         string       `json:"customer_name,omitempty"`
	TaxID                string       `json:"tax_id"`
	Amount               money.Amount `json:"amount"`
	IncludedInShiftTotal bool         `json:"included_in_shift_total"`
}

type CourierService string

const (
	CourierPAC   CourierService = "PAC"
	CourierSEDEX CourierService = "SEDEX"
	CourierNone  CourierService = ""
)

type CourierShipment struct {
	ServiceType          CourierService `json:"service_type"`
	State                string         `json:"state"`
	ClientName           string         `json:"client_name"`
	Amount               money.Amount   `json:"amount"`
	IncludedInShiftTotal bool           `json:"included_in_shift_total"`
}

// FreightShipment is informational and never counts toward the balance.
type FreightShipment struct {
	ClientName         string       `json:"client_name"`
	State              string       `json:"state"`
	Weight             float64      `json:"weight"`
	Quantity           int          `json:"quantity"`
	Amount             money.Amount `json:"amount"`
	DeclaredGoodsValue money.Amount `json:"declared_goods_value,omitempty"`
	InvoiceNumber      string       `json:"invoice_number,omitempty"`
}

type EmployeeAdvance struct {
	EmployeeName string       `json:"employee_name"`
	Amount       money.Amount `json:"amount"`
}

// CommissionAgent is a "puxador" record.
type CommissionAgent struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	TotalSales money.Amount    `json:"total_sales"`
	Value      money.Amount    `json:"value"`
	Clients    []Split         `json:"clients"`
}

// Justification is one of the two legacy withdrawal justification fields.
type Justification struct {
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
}

// Exits is the outbound side of a shift.
type Exits struct {
	Discounts                    money.Amount      `json:"discounts"`
	WithdrawalTotal              money.Amount      `json:"withdrawal_total"`
	JustificationA               Justification     `json:"justification_a"`
	JustificationB               Justification     `json:"justification_b"`
	Withdrawals                  []ExitRecord      `json:"withdrawals"`
	Devolutions                  []Devolution      `json:"devolutions"`
	CourierShipments             []CourierShipment `json:"courier_shipments"`
	FreightShipments             []FreightShipment `json:"freight_shipments"`
	EmployeeAdvances             []EmployeeAdvance `json:"employee_advances"`
	AdvancesIncludedInShiftTotal bool              `json:"advances_included_in_shift_total"`
	CommissionAgents             []CommissionAgent `json:"commission_agents"`
}

// Cancellation is a voided sale recorded during the shift.
type Cancellation struct {
	ID         string       `json:"id"`
	SaleNumber string       `json:"sale_number"`
	ClientName string       `json:"client_name"`
	Amount     money.Amount `json:"amount"`
	Reason     string       `json:"reason"`
	Operator   string       `json:"operator"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Snapshot is the whole persisted state of one shift.
type Snapshot struct {
	Entries       Entries        `json:"entries"`
	Exits         Exits          `json:"exits"`
	Cancellations []Cancellation `json:"cancelamentos"`
	Observations  string         `json:"observations,omitempty"`
}

// Totals is the derived balance of a snapshot.
type Totals struct {
	GrossInbound        money.Amount `json:"gross_inbound"`
	IncludedDevolutions money.Amount `json:"included_devolutions"`
	IncludedCourier     money.Amount `json:"included_courier"`
	IncludedAdvances    money.Amount `json:"included_advances"`
	IncludedWithdrawals money.Amount `json:"included_withdrawals"`
	FinalBalance        money.Amount `json:"final_balance"`
	Discounts           money.Amount `json:"discounts"`
	CommissionTotal     money.Amount `json:"commission_total"`
	FreightTotal        money.Amount `json:"freight_total"`
}

// Problem is one failed reconciliation rule, phrased for the operator.
type Problem struct {
	Rule     string       `json:"rule"`
	Channel  Channel      `json:"channel,omitempty"`
	Declared money.Amount `json:"declared"`
	Summed   money.Amount `json:"summed"`
	Message  string       `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Terminal    string `json:"terminal"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor is whoever drives a request. Terminal is empty for actors that do
// not come from a signed token, like the CLI.
type Actor struct {
	Username string
	Role     string
	Terminal string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type OperatorCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type OperatorUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)
