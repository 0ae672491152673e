// Package ezpay implements the EZPay e-invoice platform adapter: invoice
// issuance plus mobile-barcode and love-code validation over the platform's
// encrypted multipart API.
package ezpay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"paybridge/internal/shared/biztime"
	"paybridge/internal/shared/config"
	apperrors "paybridge/internal/shared/errors"
	"paybridge/internal/shared/logger"
)

const (
	// Development platform defaults. Production merchants must override
	// through configuration.
	defaultBaseURL    = "https://cinv.ezpay.com.tw"
	defaultMerchantID = "34818970"
	defaultHashKey    = "yoRs5AfTfAWe9HI4DlEYKRorr9YvV3Kr"
	defaultHashIV     = "CrJMQLwDF6zKOeaP"

	issueEndpointPath    = "/Api/invoice_issue"
	barcodeEndpointPath  = "/Api_inv_application/checkBarCode"
	loveCodeEndpointPath = "/Api_inv_application/checkLoveCode"

	// issueTimeLayout is the platform's CreateTime wall-clock format.
	issueTimeLayout = "2006-01-02 15:04:05"

	defaultRequestTimeout = 10 * time.Second
)

var (
	orderIDPattern = regexp.MustCompile(`^[0-9A-Za-z_]+$`)
	vatPattern     = regexp.MustCompile(`^\d{8}$`)
	moicaPattern   = regexp.MustCompile(`^[A-Z]{2}[0-9]{14}$`)
)

// IssueOptions are the inputs for issuing one e-invoice. A VATNumber selects
// a B2B invoice; otherwise the invoice is B2C.
type IssueOptions struct {
	// OrderID is the merchant order number, alphanumerics and underscore,
	// at most 20 chars.
	OrderID string
	Items   []Item

	BuyerName    string
	BuyerEmail   string
	BuyerAddress string
	VATNumber    string

	Carrier *Carrier

	// SpecialTaxPercentage overrides the default 5% tax rate.
	SpecialTaxPercentage int
	// CustomsCleared marks a zero-tax invoice as processed through customs.
	CustomsCleared bool

	Remark string
	// TransNumber is the platform transaction number of a related payment.
	TransNumber string
}

// responseEnvelope is the platform's JSON reply. Result is a JSON document
// for issuance and hex ciphertext for validation endpoints.
type responseEnvelope struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
	Result  string `json:"Result"`
}

type issueResult struct {
	InvoiceNumber string `json:"InvoiceNumber"`
	RandomNum     string `json:"RandomNum"`
	CreateTime    string `json:"CreateTime"`
}

// Gateway is the EZPay e-invoice platform client.
type Gateway struct {
	baseURL    string
	merchantID string
	codec      codec
	httpClient *http.Client
	validate   *validator.Validate
	logger     logger.Interface
}

// New builds a gateway from configuration. Zero-valued fields fall back to
// the development platform.
func New(cfg config.EZPayConfig, log logger.Interface) *Gateway {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	merchantID := cfg.MerchantID
	hashKey := cfg.HashKey
	hashIV := cfg.HashIV
	if merchantID == "" {
		merchantID = defaultMerchantID
		hashKey = defaultHashKey
		hashIV = defaultHashIV
	}

	timeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	if log == nil {
		log = logger.NewLogger()
	}

	return &Gateway{
		baseURL:    baseURL,
		merchantID: merchantID,
		codec:      newCodec(hashKey, hashIV),
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		logger:     log.Named("ezpay"),
	}
}

// Issue validates the options, assembles and encrypts the issuance payload
// and posts it to the platform. Love-code and mobile-barcode carriers are
// validated remotely before issuing.
func (g *Gateway) Issue(ctx context.Context, options IssueOptions) (*Invoice, error) {
	taxType, err := g.validateIssueOptions(ctx, options)
	if err != nil {
		return nil, err
	}

	totalAmount := totalPrice(options.Items)
	if totalAmount <= 0 {
		return nil, apperrors.NewValidationError("invoice amount should be more than zero")
	}

	postData, err := g.codec.encrypt(buildIssueFields(options, taxType, totalAmount))
	if err != nil {
		return nil, apperrors.NewInternalError("encrypt issue payload", err.Error())
	}

	envelope, err := g.post(ctx, issueEndpointPath, []kv{
		{"MerchantID_", g.merchantID},
		{"PostData_", postData},
	})
	if err != nil {
		return nil, err
	}

	var result issueResult
	if err := json.Unmarshal([]byte(envelope.Result), &result); err != nil {
		return nil, apperrors.NewInternalError("issue result is malformed", err.Error())
	}

	issuedOn, err := time.ParseInLocation(issueTimeLayout, result.CreateTime, biztime.Location())
	if err != nil {
		return nil, apperrors.NewInternalError("issue result create time is malformed", result.CreateTime)
	}

	g.logger.Infow("invoice issued",
		"order_id", options.OrderID,
		"invoice_number", result.InvoiceNumber,
	)

	return &Invoice{
		Items:         options.Items,
		IssuedOn:      issuedOn.UTC(),
		InvoiceNumber: result.InvoiceNumber,
		RandomCode:    result.RandomNum,
	}, nil
}

// IsMobileBarcodeValid asks the platform whether a mobile barcode carrier
// code is registered.
func (g *Gateway) IsMobileBarcodeValid(ctx context.Context, code string) (bool, error) {
	return g.checkCarrierCode(ctx, barcodeEndpointPath, "CellphoneBarcode", code)
}

// IsLoveCodeValid asks the platform whether a charity love code exists.
func (g *Gateway) IsLoveCodeValid(ctx context.Context, code string) (bool, error) {
	return g.checkCarrierCode(ctx, loveCodeEndpointPath, "LoveCode", code)
}

func (g *Gateway) checkCarrierCode(ctx context.Context, path, field, code string) (bool, error) {
	postData, err := g.codec.encrypt([]kv{
		{"TimeStamp", strconv.FormatInt(time.Now().Unix(), 10)},
		{field, code},
	})
	if err != nil {
		return false, apperrors.NewInternalError("encrypt validation payload", err.Error())
	}

	envelope, err := g.post(ctx, path, []kv{
		{"MerchantID_", g.merchantID},
		{"Version", "1.0"},
		{"RespondType", "JSON"},
		{"PostData_", postData},
		{"CheckValue", g.codec.checksum(postData)},
	})
	if err != nil {
		return false, err
	}

	plain, err := g.codec.decrypt(envelope.Result)
	if err != nil {
		return false, apperrors.NewIntegrityError("validation result cannot be decrypted", err.Error())
	}

	return decodeResponseFields(plain)["IsExist"] == "Y", nil
}

// post sends a multipart form and decodes the platform's JSON envelope. A
// non-SUCCESS status is surfaced with the platform's message.
func (g *Gateway) post(ctx context.Context, path string, fields []kv) (*responseEnvelope, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, field := range fields {
		if err := writer.WriteField(field.key, field.value); err != nil {
			return nil, apperrors.NewInternalError("build request form", err.Error())
		}
	}
	if err := writer.Close(); err != nil {
		return nil, apperrors.NewInternalError("build request form", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, &body)
	if err != nil {
		return nil, apperrors.NewInternalError("build request", err.Error())
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewInternalError("invoice platform request failed", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewInternalError("read invoice platform response", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewInternalError("invoice platform request failed", resp.Status)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.NewInternalError("invoice platform response is malformed", err.Error())
	}
	if envelope.Status != "SUCCESS" {
		return nil, apperrors.NewBadRequestError("invoice platform rejected request", envelope.Message)
	}

	return &envelope, nil
}

func (g *Gateway) validateIssueOptions(ctx context.Context, options IssueOptions) (TaxType, error) {
	if options.OrderID == "" || len(options.OrderID) > 20 {
		return "", apperrors.NewValidationError("order id is required with length at most 20")
	}
	if !orderIDPattern.MatchString(options.OrderID) {
		return "", apperrors.NewValidationError("order id only allows numbers, alphabets and underline")
	}
	if options.VATNumber != "" && !vatPattern.MatchString(options.VATNumber) {
		return "", apperrors.NewValidationError("invalid VAT number format", options.VATNumber)
	}
	if options.BuyerEmail != "" {
		if err := g.validate.Var(options.BuyerEmail, "email"); err != nil {
			return "", apperrors.NewValidationError("buyer email is invalid", options.BuyerEmail)
		}
	}
	if options.VATNumber != "" && (options.Carrier == nil || options.Carrier.Type != CarrierTypePrint) {
		return "", apperrors.NewValidationError("B2B invoice requires the print carrier")
	}
	if options.VATNumber == "" && len([]rune(options.BuyerName)) > 30 {
		return "", apperrors.NewValidationError("B2C invoice buyer name maximum length is 30 chars")
	}
	if options.Carrier != nil && options.Carrier.Type == CarrierTypePlatform && options.BuyerEmail == "" {
		return "", apperrors.NewValidationError("platform carrier requires a buyer email for notification")
	}

	taxType := deriveTaxType(options.Items)
	if taxType == TaxTypeSpecial {
		return "", apperrors.NewValidationError("special tax type is not supported")
	}
	if taxType == TaxTypeMixed && options.VATNumber != "" {
		return "", apperrors.NewValidationError("B2B invoice does not support mixed tax items")
	}

	if options.Carrier != nil {
		switch options.Carrier.Type {
		case CarrierTypeLoveCode:
			valid, err := g.IsLoveCodeValid(ctx, options.Carrier.Code)
			if err != nil {
				return "", err
			}
			if !valid {
				return "", apperrors.NewValidationError("love code is invalid", options.Carrier.Code)
			}
		case CarrierTypeMobile:
			valid, err := g.IsMobileBarcodeValid(ctx, options.Carrier.Code)
			if err != nil {
				return "", err
			}
			if !valid {
				return "", apperrors.NewValidationError("mobile barcode is invalid", options.Carrier.Code)
			}
		case CarrierTypeMOICA:
			if !moicaPattern.MatchString(options.Carrier.Code) {
				return "", apperrors.NewValidationError("invalid MOICA code", options.Carrier.Code)
			}
		}
	}

	return taxType, nil
}

func totalPrice(items []Item) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}

// itemTaxRate is the divisor converting a tax-included amount to its pre-tax
// amount for one item.
func itemTaxRate(item Item, specialTaxPercentage int) float64 {
	switch item.TaxType {
	case TaxTypeTaxFree, TaxTypeZeroTax:
		return 1
	default:
		if specialTaxPercentage != 0 {
			return float64(specialTaxPercentage)/100 + 1
		}
		return 1.05
	}
}

func carrierTypeCode(carrier *Carrier) string {
	if carrier == nil {
		return ""
	}
	switch carrier.Type {
	case CarrierTypeMobile:
		return "0"
	case CarrierTypeMOICA:
		return "1"
	case CarrierTypePlatform:
		return "2"
	default:
		return ""
	}
}

func carrierCode(carrier *Carrier) string {
	if carrier == nil {
		return ""
	}
	switch carrier.Type {
	case CarrierTypeMobile, CarrierTypeMOICA, CarrierTypePlatform:
		return strings.TrimSpace(carrier.Code)
	default:
		return ""
	}
}

func buildIssueFields(options IssueOptions, taxType TaxType, totalAmount int64) []kv {
	amountWithoutTax := int64(math.Round(sumOverItems(options.Items, func(item Item) float64 {
		return float64(item.Quantity*item.UnitPrice) / itemTaxRate(item, options.SpecialTaxPercentage)
	})))

	taxRate := "0"
	if taxType != TaxTypeTaxFree && taxType != TaxTypeZeroTax {
		taxRate = "5"
		if options.SpecialTaxPercentage != 0 {
			taxRate = strconv.Itoa(options.SpecialTaxPercentage)
		}
	}

	category := "B2C"
	buyerName := options.BuyerName
	buyerAddress := ""
	if options.VATNumber != "" {
		category = "B2B"
		buyerAddress = options.BuyerAddress
		if len([]rune(buyerName)) > 60 {
			buyerName = options.VATNumber
		}
	}

	loveCode := ""
	if options.Carrier != nil && options.Carrier.Type == CarrierTypeLoveCode {
		loveCode = options.Carrier.Code
	}

	typeCode := carrierTypeCode(options.Carrier)
	printFlag := "N"
	if options.VATNumber != "" || (typeCode == "" && loveCode == "") {
		printFlag = "Y"
	}

	customsClearance := ""
	if taxType == TaxTypeZeroTax {
		customsClearance = "1"
		if options.CustomsCleared {
			customsClearance = "2"
		}
	}

	amtSales, amtZero, amtFree := "", "", ""
	if taxType == TaxTypeMixed {
		sales := int64(math.Round(sumOverItems(options.Items, func(item Item) float64 {
			if item.TaxType == TaxTypeTaxFree || item.TaxType == TaxTypeZeroTax {
				return 0
			}
			return float64(item.Quantity*item.UnitPrice) / itemTaxRate(item, options.SpecialTaxPercentage)
		})))
		amtSales = strconv.FormatInt(sales, 10)
		amtZero = emptyIfZero(sumByTaxType(options.Items, TaxTypeZeroTax))
		amtFree = emptyIfZero(sumByTaxType(options.Items, TaxTypeTaxFree))
	}

	itemTaxTypes := ""
	if taxType == TaxTypeMixed {
		codes := make([]string, 0, len(options.Items))
		for _, item := range options.Items {
			switch item.TaxType {
			case TaxTypeTaxFree:
				codes = append(codes, "3")
			case TaxTypeZeroTax:
				codes = append(codes, "2")
			default:
				codes = append(codes, "1")
			}
		}
		itemTaxTypes = strings.Join(codes, "|")
	}

	remark := options.Remark
	if len([]rune(remark)) > 200 {
		remark = string([]rune(remark)[:200])
	}

	return []kv{
		{"RespondType", "JSON"},
		{"Version", "1.5"},
		{"TimeStamp", strconv.FormatInt(time.Now().Unix(), 10)},
		{"TransNum", options.TransNumber},
		{"MerchantOrderNo", options.OrderID},
		{"Status", "1"},
		{"CreateStatusTime", ""},
		{"Category", category},
		{"BuyerName", buyerName},
		{"BuyerUBN", options.VATNumber},
		{"BuyerAddress", buyerAddress},
		{"BuyerEmail", options.BuyerEmail},
		{"CarrierType", typeCode},
		{"CarrierNum", carrierCode(options.Carrier)},
		{"LoveCode", loveCode},
		{"PrintFlag", printFlag},
		{"KioskPrintFlag", ""},
		{"TaxType", taxTypeCodes[taxType]},
		{"TaxRate", taxRate},
		{"CustomsClearance", customsClearance},
		{"Amt", strconv.FormatInt(amountWithoutTax, 10)},
		{"AmtSales", amtSales},
		{"AmtZero", amtZero},
		{"AmtFree", amtFree},
		{"TaxAmt", strconv.FormatInt(totalAmount-amountWithoutTax, 10)},
		{"TotalAmt", strconv.FormatInt(totalAmount, 10)},
		{"ItemName", joinItems(options.Items, func(item Item) string { return item.Name })},
		{"ItemCount", joinItems(options.Items, func(item Item) string { return strconv.FormatInt(item.Quantity, 10) })},
		{"ItemUnit", joinItems(options.Items, func(item Item) string {
			if item.Unit == "" {
				return "式"
			}
			return item.Unit
		})},
		{"ItemPrice", joinItems(options.Items, func(item Item) string {
			if options.VATNumber == "" {
				return strconv.FormatInt(item.UnitPrice, 10)
			}
			return strconv.FormatInt(int64(math.Round(float64(item.UnitPrice)/itemTaxRate(item, options.SpecialTaxPercentage))), 10)
		})},
		{"ItemAmt", joinItems(options.Items, func(item Item) string {
			if options.VATNumber == "" {
				return strconv.FormatInt(item.UnitPrice*item.Quantity, 10)
			}
			return strconv.FormatInt(int64(math.Round(float64(item.Quantity*item.UnitPrice)/itemTaxRate(item, options.SpecialTaxPercentage))), 10)
		})},
		{"ItemTaxType", itemTaxTypes},
		{"Comment", remark},
	}
}

func sumOverItems(items []Item, fn func(Item) float64) float64 {
	var sum float64
	for _, item := range items {
		sum += fn(item)
	}
	return sum
}

func sumByTaxType(items []Item, taxType TaxType) int64 {
	var sum int64
	for _, item := range items {
		if item.TaxType == taxType {
			sum += item.Quantity * item.UnitPrice
		}
	}
	return sum
}

func emptyIfZero(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func joinItems(items []Item, fn func(Item) string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fn(item))
	}
	return strings.Join(parts, "|")
}

// Close is a no-op today; kept for symmetry with the payment gateway.
func (g *Gateway) Close() {}
