package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"cafe-agent/internal/domain"
)

const (
	skProfile     = "PROFILE#"
	skPrefixOrder = "ORDER#"
)

var (
	// ErrCustomerExists is returned by CreateCustomer for duplicate emails.
	ErrCustomerExists = errors.New("repository: customer already exists")
	// ErrCustomerNotFound is returned when no account matches the email.
	ErrCustomerNotFound = errors.New("repository: customer not found")
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// CustomerStore defines the account operations consumed by the auth service.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, name, email, phone, passwordHash string) (domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (domain.Customer, error)
}

// OrderStore defines the record-store operations consumed at checkout and
// for history lookups.
type OrderStore interface {
	CreateOrder(ctx context.Context, customerID, sessionID string, lines []domain.OrderLine, total float64, status string) (string, error)
	QueryOrders(ctx context.Context, customerID string) ([]domain.Order, error)
}

// Client wraps a single DynamoDB table holding customer profiles and
// completed orders.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// custPK returns the partition key for a customer profile.
func custPK(email string) string {
	return "CUST#" + strings.ToLower(strings.TrimSpace(email))
}

// acctPK returns the partition key grouping a customer's orders.
func acctPK(customerID string) string {
	return "ACCT#" + customerID
}

// orderSK returns the sort key for an order using the current UTC timestamp,
// so Query can return orders in time order.
func orderSK(ts time.Time) string {
	return skPrefixOrder + ts.UTC().Format(time.RFC3339Nano)
}

// CreateCustomer writes a new account record. A second signup with the same
// email fails with ErrCustomerExists.
func (c *Client) CreateCustomer(ctx context.Context, name, email, phone, passwordHash string) (domain.Customer, error) {
	cust := domain.Customer{
		PK:           custPK(email),
		SK:           skProfile,
		CustomerID:   uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                customerItem(cust),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return domain.Customer{}, ErrCustomerExists
		}
		return domain.Customer{}, fmt.Errorf("repository: CreateCustomer: %w", err)
	}
	return cust, nil
}

// GetCustomerByEmail reads an account record.
func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (domain.Customer, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: custPK(email)},
			"SK": &types.AttributeValueMemberS{Value: skProfile},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repository: GetCustomerByEmail: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Customer{}, ErrCustomerNotFound
	}
	return itemToCustomer(out.Item)
}

// CreateOrder persists one completed order with its line items embedded.
func (c *Client) CreateOrder(ctx context.Context, customerID, sessionID string, lines []domain.OrderLine, total float64, status string) (string, error) {
	if strings.TrimSpace(customerID) == "" {
		return "", errors.New("repository: CreateOrder: customer id is required")
	}
	if len(lines) == 0 {
		return "", errors.New("repository: CreateOrder: order must have lines")
	}

	now := time.Now().UTC()
	order := domain.Order{
		PK:         acctPK(customerID),
		SK:         orderSK(now),
		OrderID:    uuid.NewString(),
		CustomerID: customerID,
		SessionID:  sessionID,
		Total:      total,
		Status:     status,
		PlacedAt:   now.Format(time.RFC3339),
		Lines:      lines,
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                orderItem(order),
		ConditionExpression: aws.String("attribute_not_exists(PK) OR attribute_not_exists(SK)"),
	})
	if err != nil {
		return "", fmt.Errorf("repository: CreateOrder: %w", err)
	}
	return order.OrderID, nil
}

// QueryOrders returns a customer's past orders, newest first.
func (c *Client) QueryOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: acctPK(customerID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixOrder},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: QueryOrders: %w", err)
	}

	orders := make([]domain.Order, 0, len(out.Items))
	for _, item := range out.Items {
		order, err := itemToOrder(item)
		if err != nil {
			return nil, fmt.Errorf("repository: QueryOrders unmarshal: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func customerItem(cust domain.Customer) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: cust.PK},
		"SK":           &types.AttributeValueMemberS{Value: cust.SK},
		"customerId":   &types.AttributeValueMemberS{Value: cust.CustomerID},
		"name":         &types.AttributeValueMemberS{Value: cust.Name},
		"email":        &types.AttributeValueMemberS{Value: cust.Email},
		"phone":        &types.AttributeValueMemberS{Value: cust.Phone},
		"passwordHash": &types.AttributeValueMemberS{Value: cust.PasswordHash},
		"createdAt":    &types.AttributeValueMemberS{Value: cust.CreatedAt},
	}
}

func orderItem(order domain.Order) map[string]types.AttributeValue {
	lines := make([]types.AttributeValue, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"name":     &types.AttributeValueMemberS{Value: l.Name},
			"quantity": &types.AttributeValueMemberN{Value: strconv.Itoa(l.Quantity)},
			"price":    &types.AttributeValueMemberN{Value: formatFloat(l.UnitPrice)},
		}})
	}
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: order.PK},
		"SK":        &types.AttributeValueMemberS{Value: order.SK},
		"orderId":   &types.AttributeValueMemberS{Value: order.OrderID},
		"sessionId": &types.AttributeValueMemberS{Value: order.SessionID},
		"total":     &types.AttributeValueMemberN{Value: formatFloat(order.Total)},
		"status":    &types.AttributeValueMemberS{Value: order.Status},
		"placedAt":  &types.AttributeValueMemberS{Value: order.PlacedAt},
		"lines":     &types.AttributeValueMemberL{Value: lines},
	}
}

func itemToCustomer(item map[string]types.AttributeValue) (domain.Customer, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Customer{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Customer{}, err
	}
	customerID, err := strAttr(item, "customerId")
	if err != nil {
		return domain.Customer{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.Customer{}, err
	}
	email, err := strAttr(item, "email")
	if err != nil {
		return domain.Customer{}, err
	}
	hash, err := strAttr(item, "passwordHash")
	if err != nil {
		return domain.Customer{}, err
	}
	phone, _ := strAttr(item, "phone")         // allow empty
	createdAt, _ := strAttr(item, "createdAt") // allow empty

	return domain.Customer{
		PK:           pk,
		SK:           sk,
		CustomerID:   customerID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		CreatedAt:    createdAt,
	}, nil
}

func itemToOrder(item map[string]types.AttributeValue) (domain.Order, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Order{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Order{}, err
	}
	orderID, err := strAttr(item, "orderId")
	if err != nil {
		return domain.Order{}, err
	}
	total, err := floatAttr(item, "total")
	if err != nil {
		return domain.Order{}, err
	}
	status, _ := strAttr(item, "status")
	placedAt, _ := strAttr(item, "placedAt")
	sessionID, _ := strAttr(item, "sessionId")

	var lines []domain.OrderLine
	if raw, ok := item["lines"]; ok {
		list, ok := raw.(*types.AttributeValueMemberL)
		if !ok {
			return domain.Order{}, errors.New("repository: attribute \"lines\" is not a list")
		}
		for _, el := range list.Value {
			m, ok := el.(*types.AttributeValueMemberM)
			if !ok {
				return domain.Order{}, errors.New("repository: order line is not a map")
			}
			name, err := strAttr(m.Value, "name")
			if err != nil {
				return domain.Order{}, err
			}
			qty, err := intAttr(m.Value, "quantity")
			if err != nil {
				return domain.Order{}, err
			}
			price, err := floatAttr(m.Value, "price")
			if err != nil {
				return domain.Order{}, err
			}
			lines = append(lines, domain.OrderLine{Name: name, Quantity: qty, UnitPrice: price})
		}
	}

	return domain.Order{
		PK:        pk,
		SK:        sk,
		OrderID:   orderID,
		SessionID: sessionID,
		Total:     total,
		Status:    status,
		PlacedAt:  placedAt,
		Lines:     lines,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func floatAttr(item map[string]types.AttributeValue, key string) (float64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
