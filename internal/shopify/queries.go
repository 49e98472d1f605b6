package shopify

// Every mutation asks for the same cart projection so each gateway call can
// return one full snapshot. userErrors carry platform-side rejections that
// arrive with a 200.
const cartFragment = `fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
    shippingAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount currencyCode }
            selectedOptions { name value }
            image { url altText }
            product { title handle }
          }
        }
      }
    }
  }
}`

const mutationCartCreate = cartFragment + `
mutation CartCreate {
  cartCreate {
    cart { ...CartFields }
    userErrors { field message code }
  }
}`

const queryCart = cartFragment + `
query Cart($cartId: ID!) {
  cart(id: $cartId) { ...CartFields }
}`

const mutationCartLinesAdd = cartFragment + `
mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message code }
  }
}`

const mutationCartLinesUpdate = cartFragment + `
mutation CartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message code }
  }
}`

const mutationCartLinesRemove = cartFragment + `
mutation CartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFields }
    userErrors { field message code }
  }
}`

const queryShopName = `query ShopName {
  shop { name }
}`

const queryProductVariants = `query ProductVariants($handle: String!) {
  product(handle: $handle) {
    handle
    title
    options { name values }
    variants(first: 100) {
      edges {
        node {
          id
          title
          availableForSale
          price { amount currencyCode }
          selectedOptions { name value }
          image { url altText }
        }
      }
    }
  }
}`

const queryProducts = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      cursor
      node {
        id
        handle
        title
        description
        tags
        availableForSale
        options { name values }
        featuredImage { url altText }
        priceRange { minVariantPrice { amount currencyCode } }
        compareAtPriceRange { minVariantPrice { amount currencyCode } }
      }
    }
  }
}`
