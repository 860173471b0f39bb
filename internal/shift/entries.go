package shift

import (
	"strings"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
)

// Mirror recomputes MiscIncomeTotal and FreeGiftsTotal from their lists.
// An empty list leaves the scalar untouched so records that only ever carried
// the scalar keep their value.
func Mirror(e domain.Entries) domain.Entries {
	if len(e.MiscIncome) > 0 {
		e.MiscIncomeTotal = money.Sum(e.MiscIncome, ledgerAmount)
	}
	if len(e.FreeGifts) > 0 {
		e.FreeGiftsTotal = money.Sum(e.FreeGifts, ledgerAmount)
	}
	return e
}

func ledgerAmount(item domain.LedgerItem) money.Amount { return item.Amount }

func SetStartingFloat(e domain.Entries, amount money.Amount) domain.Entries {
	e.StartingFloat = money.NonNegative(amount)
	return e
}

func SetDeclaredTotal(e domain.Entries, ch domain.Channel, amount money.Amount) (domain.Entries, error) {
	if !ch.Valid() {
		return e, ErrUnknownChannel
	}
	entry := e.Channel(ch)
	entry.DeclaredTotal = money.NonNegative(amount)
	entry.SubEntries = cloneList(entry.SubEntries)
	return e.WithChannel(ch, entry), nil
}

func AddSplit(e domain.Entries, ch domain.Channel, split domain.Split) (domain.Entries, error) {
	if !ch.Valid() {
		return e, ErrUnknownChannel
	}
	entry := e.Channel(ch)
	entry.SubEntries = appendCopy(entry.SubEntries, cleanSplit(split))
	return e.WithChannel(ch, entry), nil
}

func RemoveSplit(e domain.Entries, ch domain.Channel, index int) (domain.Entries, error) {
	if !ch.Valid() {
		return e, ErrUnknownChannel
	}
	entry := e.Channel(ch)
	splits, err := removeAt(entry.SubEntries, index)
	entry.SubEntries = splits
	return e.WithChannel(ch, entry), err
}

func UpdateSplit(e domain.Entries, ch domain.Channel, index int, split domain.Split) (domain.Entries, error) {
	if !ch.Valid() {
		return e, ErrUnknownChannel
	}
	entry := e.Channel(ch)
	splits, err := replaceAt(entry.SubEntries, index, cleanSplit(split))
	entry.SubEntries = splits
	return e.WithChannel(ch, entry), err
}

func cleanCheck(c domain.Check) domain.Check {
	c.Bank = strings.TrimSpace(c.Bank)
	c.Branch = strings.TrimSpace(c.Branch)
	c.CheckNumber = strings.TrimSpace(c.CheckNumber)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.Amount = money.NonNegative(c.Amount)
	return c
}

func AddCheck(e domain.Entries, c domain.Check) domain.Entries {
	e.Checks = appendCopy(e.Checks, cleanCheck(c))
	return e
}

func RemoveCheck(e domain.Entries, index int) (domain.Entries, error) {
	checks, err := removeAt(e.Checks, index)
	e.Checks = checks
	return e, err
}

func UpdateCheck(e domain.Entries, index int, c domain.Check) (domain.Entries, error) {
	checks, err := replaceAt(e.Checks, index, cleanCheck(c))
	e.Checks = checks
	return e, err
}

func AddTax(e domain.Entries, tax domain.Tax) domain.Entries {
	tax.Label = strings.TrimSpace(tax.Label)
	tax.Amount = money.NonNegative(tax.Amount)
	e.Taxes = appendCopy(e.Taxes, tax)
	return e
}

func RemoveTax(e domain.Entries, index int) (domain.Entries, error) {
	taxes, err := removeAt(e.Taxes, index)
	e.Taxes = taxes
	return e, err
}

func cleanLedgerItem(item domain.LedgerItem) domain.LedgerItem {
	item.Description = strings.TrimSpace(item.Description)
	item.Amount = money.NonNegative(item.Amount)
	return item
}

func AddMiscIncome(e domain.Entries, item domain.LedgerItem) domain.Entries {
	e.MiscIncome = appendCopy(e.MiscIncome, cleanLedgerItem(item))
	return Mirror(e)
}

func RemoveMiscIncome(e domain.Entries, index int) (domain.Entries, error) {
	items, err := removeAt(e.MiscIncome, index)
	if err == nil && len(items) == 0 {
		e.MiscIncomeTotal = money.Zero
	}
	e.MiscIncome = items
	return Mirror(e), err
}

// SetMiscIncomeTotal sets the scalar Outros total. While the itemized list is
// non-empty the list sum wins.
func SetMiscIncomeTotal(e domain.Entries, amount money.Amount) domain.Entries {
	e.MiscIncomeTotal = money.NonNegative(amount)
	return Mirror(e)
}

func AddFreeGift(e domain.Entries, item domain.LedgerItem) domain.Entries {
	e.FreeGifts = appendCopy(e.FreeGifts, cleanLedgerItem(item))
	return Mirror(e)
}

func RemoveFreeGift(e domain.Entries, index int) (domain.Entries, error) {
	items, err := removeAt(e.FreeGifts, index)
	if err == nil && len(items) == 0 {
		e.FreeGiftsTotal = money.Zero
	}
	e.FreeGifts = items
	return Mirror(e), err
}

// SetFreeGiftsTotal sets the scalar Brindes total. While the itemized list is
// non-empty the list sum wins.
func SetFreeGiftsTotal(e domain.Entries, amount money.Amount) domain.Entries {
	e.FreeGiftsTotal = money.NonNegative(amount)
	return Mirror(e)
}
