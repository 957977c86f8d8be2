package ddbsdk

// DynamoEntity is anything a Put can write. IsValid is called before the item
// is marshalled.
type DynamoEntity interface {
	IsValid() error
}
